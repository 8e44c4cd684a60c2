// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package speech

import (
	"encoding/binary"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
)

// pcmAudio is decoded waveform data ready for the recognizer.
type pcmAudio struct {
	sampleRate float64
	channels   int
	data       []byte
}

// parseWAV decodes a RIFF/WAVE container holding 16-bit PCM. Anything else
// (compressed codecs, float samples, truncated headers) is a transcription
// fault the caller reports as an unsupported recording.
func parseWAV(raw []byte) (*pcmAudio, error) {
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, fault.New(fault.KindTranscription, "recording is not a WAV file")
	}

	var audio pcmAudio
	var haveFmt bool

	// Walk the chunk list. Chunks are 2-byte aligned.
	pos := 12
	for pos+8 <= len(raw) {
		chunkID := string(raw[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(raw) {
			return nil, fault.New(fault.KindTranscription, "WAV file is truncated")
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fault.New(fault.KindTranscription, "WAV format chunk is malformed")
			}
			format := binary.LittleEndian.Uint16(raw[body : body+2])
			channels := binary.LittleEndian.Uint16(raw[body+2 : body+4])
			sampleRate := binary.LittleEndian.Uint32(raw[body+4 : body+8])
			bits := binary.LittleEndian.Uint16(raw[body+14 : body+16])
			if format != 1 {
				return nil, fault.New(fault.KindTranscription, "unsupported WAV codec %d, only uncompressed PCM is supported", format)
			}
			if bits != 16 {
				return nil, fault.New(fault.KindTranscription, "unsupported sample width %d bits, expected 16", bits)
			}
			audio.sampleRate = float64(sampleRate)
			audio.channels = int(channels)
			haveFmt = true
		case "data":
			audio.data = raw[body : body+chunkSize]
		}

		pos = body + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if !haveFmt || audio.data == nil {
		return nil, fault.New(fault.KindTranscription, "WAV file is missing format or data chunks")
	}
	if audio.channels > 1 {
		audio.data = downmixStereo(audio.data, audio.channels)
		audio.channels = 1
	}
	return &audio, nil
}

// downmixStereo averages interleaved 16-bit channels into mono.
func downmixStereo(data []byte, channels int) []byte {
	frame := channels * 2
	frames := len(data) / frame
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		var sum int
		for c := 0; c < channels; c++ {
			off := i*frame + c*2
			sum += int(int16(binary.LittleEndian.Uint16(data[off : off+2])))
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(sum/channels)))
	}
	return out
}
