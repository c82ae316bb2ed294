package hotkey

import (
	"log"
	"strings"
)

// Windows virtual-key codes for keys with no positional formula. Modifiers
// list both left and right variants.
var specialRawcodes = map[string][]uint16{
	"ctrl":      {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":       {164, 165}, // VK_LMENU, VK_RMENU
	"shift":     {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":       {91, 92},   // VK_LWIN, VK_RWIN
	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a normalized key name to its Windows virtual-key
// rawcodes. Letters and digits follow their VK code ranges directly; F1-F24
// start at VK_F1 (112).
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case len(name) == 1 && name[0] >= 'a' && name[0] <= 'z':
		return []uint16{uint16(name[0] - 'a' + 'A')}
	case len(name) == 1 && name[0] >= '0' && name[0] <= '9':
		return []uint16{uint16(name[0])}
	}
	if strings.HasPrefix(name, "f") && len(name) <= 3 {
		n := 0
		for _, r := range name[1:] {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}
	if codes, ok := specialRawcodes[name]; ok {
		return codes
	}
	switch name {
	case "win", "super":
		return specialRawcodes["cmd"]
	}
	log.Printf("Hotkey: unknown key name %q", name)
	return nil
}
