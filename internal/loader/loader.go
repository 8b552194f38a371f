// Package loader handles target program image loading.
package loader

import (
	"errors"
	"fmt"
	"os"
)

const maxImageSize = 0x10000

// Load reads a raw program image from disk.
func Load(path string) ([]byte, error) {
	program, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program file %s: %w", path, err)
	}

	if len(program) == 0 {
		return nil, errors.New("program file is empty")
	}
	if len(program) > maxImageSize {
		return nil, fmt.Errorf("program image of %d bytes exceeds the 64 KiB address space", len(program))
	}

	return program, nil
}
