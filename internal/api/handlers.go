// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/buildinfo"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/hooks"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/normalize"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/pipeline"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

// maxUploadBytes bounds one uploaded file. Oversized uploads are rejected
// before they reach the extractors.
const maxUploadBytes = 64 << 20

// PipelineRequest is the JSON body of a text-modality run.
type PipelineRequest struct {
	Text       string `json:"text" binding:"required"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang" binding:"required"`
}

// PipelineResponse is the outcome of one run.
type PipelineResponse struct {
	Record           record.TranslationRecord `json:"record"`
	Truncated        bool                     `json:"truncated"`
	OriginalAudio    string                   `json:"original_audio,omitempty"`
	TranslationAudio string                   `json:"translation_audio,omitempty"`
}

// handlePipeline handles POST /v1/pipeline. A JSON body starts a text run; a
// multipart body carries a file upload plus its modality.
func (s *Server) handlePipeline(c *gin.Context) {
	var req pipeline.Request

	contentType := c.ContentType()
	if contentType == "multipart/form-data" {
		input, source, target, err := readMultipartRun(c)
		if err != nil {
			respondError(c, err)
			return
		}
		req = pipeline.Request{Input: input, Source: source, Target: target}
	} else {
		var body PipelineRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid request body: " + err.Error(),
			})
			return
		}
		req = pipeline.Request{
			Input:  normalize.Input{Modality: normalize.ModalityText, Text: body.Text},
			Source: lang.Code(body.SourceLang),
			Target: lang.Code(body.TargetLang),
		}
	}
	if req.Source == "" {
		req.Source = lang.Unknown
	}

	session, err := s.pipeline.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PipelineResponse{
		Record:           session.Record,
		Truncated:        session.Truncated,
		OriginalAudio:    session.OriginalAudio,
		TranslationAudio: session.TranslationAudio,
	})
}

// readMultipartRun reads the upload exactly once into memory. The form must
// carry a "file" part and a "modality" field.
func readMultipartRun(c *gin.Context) (normalize.Input, lang.Code, lang.Code, error) {
	modality := normalize.Modality(c.PostForm("modality"))
	source := lang.Code(c.PostForm("source_lang"))
	target := lang.Code(c.PostForm("target_lang"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return normalize.Input{}, "", "", fault.New(fault.KindEmptyInput, "missing file upload")
	}
	if fileHeader.Size > maxUploadBytes {
		return normalize.Input{}, "", "", fault.New(fault.KindUnsupportedFormat,
			"upload exceeds the %d byte limit", maxUploadBytes)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return normalize.Input{}, "", "", fault.Wrap(fault.KindExtraction, err, "failed to open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return normalize.Input{}, "", "", fault.Wrap(fault.KindExtraction, err, "failed to read upload")
	}
	if int64(len(data)) > maxUploadBytes {
		return normalize.Input{}, "", "", fault.New(fault.KindUnsupportedFormat,
			"upload exceeds the %d byte limit", maxUploadBytes)
	}

	return normalize.Input{
		Modality: modality,
		Filename: filepath.Base(fileHeader.Filename),
		Data:     data,
	}, source, target, nil
}

// handleHistory handles GET /v1/history, newest first.
func (s *Server) handleHistory(c *gin.Context) {
	records, err := s.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []record.TranslationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}

// ExportRequest asks for one history record in one format.
type ExportRequest struct {
	RecordID string `json:"record_id" binding:"required"`
	Format   string `json:"format" binding:"required"`
}

// handleExport handles POST /v1/export. The rendered document is returned as
// an attachment and, when an artifact store is configured, mirrored there.
func (s *Server) handleExport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	records, err := s.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	var rec record.TranslationRecord
	found := false
	for _, r := range records {
		if r.ID == req.RecordID {
			rec, found = r, true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no history record with id " + req.RecordID,
		})
		return
	}

	artifact, err := s.exports.Export(req.Format, rec)
	if err != nil {
		respondError(c, err)
		return
	}

	if s.artifacts != nil {
		if stored, err := s.artifacts.Put(c.Request.Context(), artifact); err != nil {
			log.Warnf("failed to mirror artifact %s: %v", artifact.Name, err)
		} else {
			log.Infof("mirrored artifact %s", stored)
		}
	}

	if s.bus != nil {
		s.bus.PublishAsync(&hooks.EventContext{
			Event:      hooks.EventExportCreated,
			Timestamp:  time.Now().UTC(),
			SourceLang: string(rec.SourceLang),
			TargetLang: string(rec.TargetLang),
			Data: map[string]any{
				"record_id": rec.ID,
				"format":    req.Format,
				"artifact":  artifact.Name,
				"bytes":     len(artifact.Data),
			},
		})
	}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.Name+`"`)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// handleLanguages handles GET /v1/languages.
func (s *Server) handleLanguages(c *gin.Context) {
	type entry struct {
		Code    string `json:"code"`
		Name    string `json:"name"`
		Display string `json:"display"`
	}
	all := s.langs.All()
	out := make([]entry, 0, len(all))
	for _, l := range all {
		out = append(out, entry{
			Code:    string(l.Code),
			Name:    l.Name,
			Display: lang.Display(l.Code),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"languages":      out,
		"export_formats": s.exports.Formats(),
	})
}

// handleAudio handles GET /v1/audio/:name, serving synthesized artifacts.
// The name is reduced to its base so the audio directory cannot be escaped.
func (s *Server) handleAudio(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	if name == "." || name == ".." || name == "/" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid audio name"})
		return
	}
	c.FileAttachment(filepath.Join(s.audioDir, name), name)
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    buildinfo.Version,
		"commit":     buildinfo.Commit,
		"build_date": buildinfo.BuildDate,
	})
}
