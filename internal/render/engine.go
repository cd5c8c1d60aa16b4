// Package render implements the conversion core: parameter resolution,
// document rasterization and per-page image encoding.
package render

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"lukechampine.com/blake3"

	"docraster/internal/pkg/errors"
	"docraster/internal/pkg/logger"
)

// baseDPI is the PDF point resolution; scale multiplies it.
const baseDPI = 72.0

// defaultContrast is the slight contrast boost applied to every
// rendered page before encoding.
const defaultContrast = 0.1

// PageImage is one successfully rendered and encoded page, named by
// content fingerprint and zero-based page index. Resubmitting identical
// bytes with the same format targets the same key.
type PageImage struct {
	Key         string
	Data        []byte
	ContentType string
}

// Renderer turns an uploaded document into encoded page images.
type Renderer interface {
	Render(ctx context.Context, data []byte, p Params) ([]PageImage, error)
}

// EngineConfig tunes the rendering engine.
type EngineConfig struct {
	// StrictPages aborts the whole request when a single page fails to
	// render or encode. The default drops the page and keeps going,
	// matching the service's historical best-effort behavior.
	StrictPages bool
	// Contrast overrides the post-render contrast adjustment.
	Contrast float64
	Log      *logger.Logger
}

// Engine renders documents with MuPDF via go-fitz. Each Render call
// owns its document handle exclusively and closes it on return; the
// engine itself holds no per-document state and is safe to share.
type Engine struct {
	strictPages bool
	contrast    float64
	log         *logger.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	log := cfg.Log
	if log == nil {
		log = logger.NewDefault()
	}
	contrast := cfg.Contrast
	if contrast == 0 {
		contrast = defaultContrast
	}
	return &Engine{
		strictPages: cfg.StrictPages,
		contrast:    contrast,
		log:         log.WithComponent("render"),
	}
}

// Fingerprint returns the hex BLAKE3-256 digest of the raw document
// bytes. Identical content always produces identical object keys,
// independent of request parameters.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Render loads the document, validates the page selection against the
// real page count and produces one encoded image per selected page in
// ascending order. An empty result is not an error.
func (e *Engine) Render(ctx context.Context, data []byte, p Params) ([]PageImage, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, errors.DocumentLoad(err)
	}
	defer doc.Close()

	fingerprint := Fingerprint(data)
	totalPages := doc.NumPage()

	var indexes []int
	if p.Pages != nil {
		if err := p.Pages.Validate(totalPages); err != nil {
			return nil, err
		}
		indexes = p.Pages.Indexes()
	} else {
		indexes = make([]int, totalPages)
		for i := range indexes {
			indexes[i] = i
		}
	}

	dpi := baseDPI
	if p.Scale > 0 {
		dpi = baseDPI * p.Scale
	}

	ext := p.Format.Extension()
	contentType := p.Format.ContentType()

	images := make([]PageImage, 0, len(indexes))
	for _, idx := range indexes {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeRender, "render.page", "render canceled")
		}

		img, err := doc.ImageDPI(idx, dpi)
		if err != nil {
			if e.strictPages {
				return nil, errors.WrapWithCode(err, errors.CodeRender, "render.page",
					fmt.Sprintf("failed to render page %d", idx+1))
			}
			e.log.Warn("skipping page, render failed", "page", idx, "error", err.Error())
			continue
		}

		var buf bytes.Buffer
		if err := p.Format.Encode(&buf, imaging.AdjustContrast(img, e.contrast)); err != nil {
			if e.strictPages {
				return nil, errors.WrapWithCode(err, errors.CodeRender, "render.encode",
					fmt.Sprintf("failed to encode page %d as %s", idx+1, p.Format))
			}
			e.log.Warn("skipping page, encode failed", "page", idx, "format", p.Format.String(), "error", err.Error())
			continue
		}

		images = append(images, PageImage{
			Key:         fmt.Sprintf("%s-%d.%s", fingerprint, idx, ext),
			Data:        buf.Bytes(),
			ContentType: contentType,
		})
	}

	return images, nil
}
