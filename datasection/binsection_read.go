package datasection

import (
	"encoding/binary"
	"fmt"
	"os"
)

// BinSectionFile holds a parsed binary container, keyed by section tag.
// Tags keeps the on-disk order.
type BinSectionFile struct {
	Tags     []string
	Sections map[string][]byte
}

func (f *BinSectionFile) Section(tag string) ([]byte, bool) {
	b, ok := f.Sections[tag]
	return b, ok
}

// ParseBinSection parses a binary container from its trailing index table.
func ParseBinSection(data []byte) (*BinSectionFile, error) {
	if len(data) < 8 {
		return nil, &FormatError{}
	}
	magic := binary.LittleEndian.Uint32(data)
	if magic != BinSectionMagic {
		return nil, &FormatError{Magic: magic}
	}
	indexLen := binary.LittleEndian.Uint32(data[len(data)-4:])
	indexStart := len(data) - 4 - int(indexLen)
	if indexStart < 4 {
		return nil, fmt.Errorf("datasection: index table length %d out of range", indexLen)
	}

	f := &BinSectionFile{Sections: map[string][]byte{}}
	pos := indexStart
	offset := 4
	for pos < len(data)-4 {
		if pos+24 > len(data)-4 {
			return nil, fmt.Errorf("datasection: truncated index entry at %d", pos)
		}
		blobLen := int(binary.LittleEndian.Uint32(data[pos:]))
		tagLen := int(binary.LittleEndian.Uint32(data[pos+20:]))
		pos += 24
		if pos+tagLen > len(data)-4 {
			return nil, fmt.Errorf("datasection: truncated tag at %d", pos)
		}
		tag := string(data[pos : pos+tagLen])
		pos += tagLen
		pos += (DefaultAlignment - pos%DefaultAlignment) % DefaultAlignment

		// The blob sits after an 8 byte header, aligned.
		offset += 8
		offset += (DefaultAlignment - offset%DefaultAlignment) % DefaultAlignment
		if offset+blobLen > indexStart {
			return nil, fmt.Errorf("datasection: section %q overruns container", tag)
		}
		f.Tags = append(f.Tags, tag)
		f.Sections[tag] = data[offset : offset+blobLen]
		offset += blobLen
		offset += (DefaultAlignment - offset%DefaultAlignment) % DefaultAlignment
	}
	return f, nil
}

// ReadBinSectionFile reads and parses the container at path.
func ReadBinSectionFile(path string) (*BinSectionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBinSection(data)
}
