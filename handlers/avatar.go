package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	avatarSize = 250

	// uploads larger than this in either dimension are rejected before decoding
	maxAvatarDimension = 4096
)

var avatarExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)

// UploadAvatar handles POST /users/me/avatar with a multipart "avatar" file.
// The image is resized to a 250x250 PNG before it is stored.
func (h *UserHandler) UploadAvatar(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)

	avatar, err := h.readAvatar(w, r)
	if err != nil {
		respondError(ctx, w, err, "")
		return
	}

	if err := h.users.SetAvatar(ctx, user.ID, avatar); err != nil {
		respondError(ctx, w, err, "User not found")
		return
	}

	logRequest(ctx, "info", "Avatar uploaded", zap.Int("bytes", len(avatar)))
	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar
func (h *UserHandler) DeleteAvatar(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := caller(ctx)

	if err := h.users.SetAvatar(ctx, user.ID, nil); err != nil {
		respondError(ctx, w, err, "User not found")
		return
	}

	logRequest(ctx, "info", "Avatar removed")
	w.WriteHeader(http.StatusOK)
}

// GetAvatar handles GET /users/{id}/avatar
func (h *UserHandler) GetAvatar(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	avatar, err := h.users.Avatar(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondError(ctx, w, err, "Avatar not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(avatar)
}

func (h *UserHandler) readAvatar(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	// allow some room for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, h.avatarMaxBytes+64<<10)
	if err := r.ParseMultipartForm(h.avatarMaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ValidationError{Message: "File too large"}
		}
		return nil, &ValidationError{Message: "Please upload an image"}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		return nil, &ValidationError{Message: "Please upload an image"}
	}
	defer file.Close()

	if header.Size > h.avatarMaxBytes {
		return nil, &ValidationError{Message: "File too large"}
	}
	if !avatarExt.MatchString(header.Filename) {
		return nil, &ValidationError{Message: "Please upload an image"}
	}

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, &ValidationError{Message: "Please upload an image"}
	}
	if cfg.Width > maxAvatarDimension || cfg.Height > maxAvatarDimension {
		return nil, &ValidationError{Message: fmt.Sprintf("Image must be at most %dx%d pixels", maxAvatarDimension, maxAvatarDimension)}
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind avatar: %w", err)
	}

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, &ValidationError{Message: "Please upload an image"}
	}

	return resizeAvatar(src)
}

func resizeAvatar(src image.Image) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
