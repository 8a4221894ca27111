package memory

import (
	"errors"
	"strings"
	"unicode"
)

const (
	titleAddress          = 0x134
	titleLength           = 16
	cartridgeTypeAddress  = 0x147
	headerChecksumAddress = 0x14D

	romBankSize  = 0x4000
	minROMLength = romBankSize // shorter than 16 KiB is a hard load error
	maxROMLength = romBankSize * 2
)

// ErrROMTooShort is returned when a ROM image is shorter than the minimum
// 16 KiB bank-0 size spec.md §6 requires.
var ErrROMTooShort = errors.New("memory: rom image shorter than 16 KiB")

// Cartridge holds the fixed 32 KiB ROM image supported in this core's
// scope (bank-switching controllers are an explicit non-goal) plus the
// handful of header fields read for diagnostics.
type Cartridge struct {
	rom [maxROMLength]byte

	Title          string
	CartridgeType  byte
	HeaderChecksum byte
}

// NewCartridge returns an empty cartridge (0xFF-filled), equivalent to a
// console with no cartridge inserted.
func NewCartridge() *Cartridge {
	c := &Cartridge{}
	for i := range c.rom {
		c.rom[i] = 0xFF
	}
	return c
}

// NewCartridgeWithData loads a ROM image. Bytes 0..0x3FFF populate bank 0,
// 0x4000..0x7FFF populate bank N; if the image is shorter than 32 KiB the
// tail of bank N is padded with 0xFF. Images shorter than 16 KiB are a
// hard error.
func NewCartridgeWithData(data []byte) (*Cartridge, error) {
	if len(data) < minROMLength {
		return nil, ErrROMTooShort
	}

	c := NewCartridge()
	copy(c.rom[:], data)
	if len(data) > maxROMLength {
		copy(c.rom[:], data[:maxROMLength])
	}

	if len(data) > titleAddress {
		end := titleAddress + titleLength
		if end > len(data) {
			end = len(data)
		}
		c.Title = cleanTitle(data[titleAddress:end])
	}
	if len(data) > cartridgeTypeAddress {
		c.CartridgeType = data[cartridgeTypeAddress]
	}
	if len(data) > headerChecksumAddress {
		c.HeaderChecksum = data[headerChecksumAddress]
	}

	return c, nil
}

// Read returns the ROM byte at address, valid over 0x0000-0x7FFF.
func (c *Cartridge) Read(address uint16) byte {
	return c.rom[address]
}

// Write is a no-op: this core supports no bank-switching controller, so
// writes to ROM space are discarded as spec.md §4.2.2 requires.
func (c *Cartridge) Write(address uint16, value byte) {}

func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			continue
		case unicode.IsPrint(r) && r < 128:
			runes = append(runes, r)
		}
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(untitled)"
	}
	return title
}
