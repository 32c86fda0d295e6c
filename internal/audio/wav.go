package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

const wavHeaderSize = 44

// wavInfo describes the PCM layout of a parsed WAV file.
type wavInfo struct {
	sampleRate    int
	channels      int
	bitsPerSample int
	dataOffset    int
	dataSize      int
}

func (w wavInfo) blockAlign() int {
	return w.channels * w.bitsPerSample / 8
}

func (w wavInfo) byteRate() int {
	return w.sampleRate * w.blockAlign()
}

func (w wavInfo) duration() time.Duration {
	if w.byteRate() == 0 {
		return 0
	}
	return time.Duration(w.dataSize) * time.Second / time.Duration(w.byteRate())
}

// parseWAV walks the RIFF chunk list and extracts the fmt and data chunks.
func parseWAV(data []byte) (wavInfo, error) {
	var info wavInfo

	if len(data) < 12 || !bytes.Equal(data[:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return info, fmt.Errorf("missing RIFF/WAVE header")
	}

	pos := 12
	haveFmt := false
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch chunkID {
		case "fmt ":
			if body+16 > len(data) {
				return info, fmt.Errorf("truncated fmt chunk")
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != 1 {
				return info, fmt.Errorf("unsupported wav encoding %d (only PCM)", audioFormat)
			}
			info.channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			info.sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			info.bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			if body+chunkSize > len(data) {
				// tolerate a short final chunk, some encoders misreport the size
				chunkSize = len(data) - body
			}
			info.dataOffset = body
			info.dataSize = chunkSize
		}

		// chunks are word-aligned
		if chunkSize%2 == 1 {
			chunkSize++
		}
		pos = body + chunkSize
	}

	if !haveFmt {
		return info, fmt.Errorf("no fmt chunk found")
	}
	if info.channels <= 0 || info.sampleRate <= 0 || info.bitsPerSample <= 0 {
		return info, fmt.Errorf("invalid fmt chunk: %d channels, %d Hz, %d bits", info.channels, info.sampleRate, info.bitsPerSample)
	}
	if info.dataOffset == 0 {
		return info, fmt.Errorf("no data chunk found")
	}
	return info, nil
}

// writeWAV wraps a PCM slice in a standalone WAV container with the given layout.
func writeWAV(info wavInfo, pcm []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + len(pcm))

	dataSize := len(pcm)
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(info.channels))
	binary.Write(&buf, binary.LittleEndian, uint32(info.sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(info.byteRate()))
	binary.Write(&buf, binary.LittleEndian, uint16(info.blockAlign()))
	binary.Write(&buf, binary.LittleEndian, uint16(info.bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(pcm)

	return buf.Bytes()
}
