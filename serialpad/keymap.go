package serialpad

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Keymap rewrites the codes sent by pads whose firmware does not use the
// sequencer codes. Unmapped codes pass through.
type Keymap map[byte]byte

// LoadKeymap parses one "keycode:padcode" pair per line. Blank lines and
// lines starting with # are skipped.
func LoadKeymap(r io.Reader) (Keymap, error) {
	keymap := Keymap{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		s := strings.Split(text, ":")
		if len(s) != 2 {
			return nil, errors.Errorf("keymap line %d: expected key:code", line)
		}
		key, err := strconv.ParseUint(strings.TrimSpace(s[0]), 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "keymap line %d", line)
		}
		code, err := strconv.ParseUint(strings.TrimSpace(s[1]), 10, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "keymap line %d", line)
		}
		keymap[byte(key)] = byte(code)
	}
	return keymap, scanner.Err()
}

func (k Keymap) Code(key byte) byte {
	if code, ok := k[key]; ok {
		return code
	}
	return key
}
