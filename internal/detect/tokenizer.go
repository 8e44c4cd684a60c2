// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package detect

import (
	"bufio"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// classifierTokenizer is a WordPiece tokenizer for the local classification
// model. It loads a one-token-per-line vocab file and falls back to [UNK] for
// anything not in the vocabulary.
type classifierTokenizer struct {
	vocab  map[string]int64
	maxLen int

	clsID int64
	sepID int64
	padID int64
	unkID int64
}

func newClassifierTokenizer(vocabPath string, maxLen int) (*classifierTokenizer, error) {
	t := &classifierTokenizer{
		vocab:  make(map[string]int64),
		maxLen: maxLen,
	}

	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		token := strings.TrimRight(scanner.Text(), "\r\n")
		t.vocab[token] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	t.clsID = t.lookupSpecial("[CLS]", 101)
	t.sepID = t.lookupSpecial("[SEP]", 102)
	t.padID = t.lookupSpecial("[PAD]", 0)
	t.unkID = t.lookupSpecial("[UNK]", 100)

	log.Debugf("loaded classifier vocab with %d tokens", len(t.vocab))
	return t, nil
}

func (t *classifierTokenizer) lookupSpecial(token string, fallback int64) int64 {
	if id, ok := t.vocab[token]; ok {
		return id
	}
	return fallback
}

// Encode produces fixed-length input IDs and an attention mask, padded with
// [PAD] up to maxLen.
func (t *classifierTokenizer) Encode(text string) (ids, mask []int64) {
	ids = make([]int64, 0, t.maxLen)
	ids = append(ids, t.clsID)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(ids) >= t.maxLen-1 {
			break
		}
		ids = append(ids, t.encodeWord(word, t.maxLen-1-len(ids))...)
	}
	ids = append(ids, t.sepID)

	mask = make([]int64, t.maxLen)
	for i := range ids {
		mask[i] = 1
	}
	for len(ids) < t.maxLen {
		ids = append(ids, t.padID)
	}
	return ids, mask
}

// encodeWord applies greedy WordPiece matching with "##" continuation pieces.
func (t *classifierTokenizer) encodeWord(word string, budget int) []int64 {
	if id, ok := t.vocab[word]; ok {
		return []int64{id}
	}

	var pieces []int64
	runes := []rune(word)
	start := 0
	for start < len(runes) && len(pieces) < budget {
		end := len(runes)
		var match int64 = -1
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				match = id
				break
			}
			end--
		}
		if match < 0 {
			return []int64{t.unkID}
		}
		pieces = append(pieces, match)
		start = end
	}
	return pieces
}
