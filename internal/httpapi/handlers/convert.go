package handlers

import (
	"io"
	"net/http"

	"docraster/internal/httpkit"
	"docraster/internal/pkg/errors"
	"docraster/internal/render"
)

// ConvertResponse is the wire shape of a successful conversion.
type ConvertResponse struct {
	Success bool     `json:"success"`
	Images  []string `json:"images"`
}

// Convert runs the conversion pipeline for one uploaded document:
// gate, field extraction, parameter resolution, render, upload fan-out.
// Every stage short-circuits on failure except the fan-out, which
// always waits for all uploads before reporting.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	// The gate runs before a single body byte is read, so rejected
	// requests cost nothing.
	if err := h.gate.Verify(r.URL.Query().Get("token")); err != nil {
		return err
	}

	data, err := h.readDocument(r)
	if err != nil {
		return err
	}

	params, err := render.ResolveParams(r.URL.Query())
	if err != nil {
		return err
	}

	images, err := h.renderer.Render(ctx, data, params)
	if err != nil {
		return err
	}

	keys, err := h.uploader.PutAll(ctx, images)
	if err != nil {
		return err
	}

	h.log.FromContext(ctx).Info("document converted",
		"pages", len(keys),
		"format", params.Format.String(),
		"bytes_in", len(data),
	)

	httpkit.WriteJSON(w, http.StatusOK, ConvertResponse{Success: true, Images: keys})
	return nil
}

// readDocument extracts the first multipart field as the document
// bytes. Remaining fields are ignored.
func (h *Handler) readDocument(r *http.Request) ([]byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "convert.form",
			"failed to read file from request")
	}

	part, err := mr.NextPart()
	if err == io.EOF {
		return nil, errors.FieldNotFound()
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "convert.form",
			"failed to read file from request")
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		// Includes the body-cap reader tripping mid-stream.
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "convert.form",
			"failed to read file from request")
	}

	return data, nil
}
