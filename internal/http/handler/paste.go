package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pasteapi/internal/highlight"
	"pasteapi/internal/ident"
	"pasteapi/internal/model"
	"pasteapi/internal/service"
)

// neverExpires is the expiry value that stores a paste without an expiration date.
const neverExpires = "never"

type createPasteRequest struct {
	Raw   string `json:"raw"`
	Lexer string `json:"lexer"`
	// Expiry is a Go duration such as "24h" or "never". Empty uses the
	// server default.
	Expiry string `json:"expiry"`
	Src    string `json:"src"`
}

type createPasteResponse struct {
	PasteID   string     `json:"paste_id"`
	RemovalID string     `json:"removal_id"`
	Lexer     string     `json:"lexer"`
	Src       string     `json:"src"`
	PubDate   time.Time  `json:"pub_date"`
	ExpDate   *time.Time `json:"exp_date"`
}

// parseExpiry maps the request expiry onto CreateInput.Expiry. Nil means
// the server default applies.
func parseExpiry(s string) (*time.Duration, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return nil, nil
	case neverExpires:
		d := model.NoExpiry
		return &d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return nil, model.ErrInvalidExpiry
	}
	return &d, nil
}

// CreatePaste stores a new paste from a JSON body and answers 201 with both
// identifiers. The removal identifier is only ever returned here.
func CreatePaste(svc service.PasteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createPasteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}
		if req.Raw == "" {
			return writeError(c, fiber.StatusBadRequest, "RAW_REQUIRED", "raw is required")
		}
		if req.Lexer != "" && !highlight.Known(req.Lexer) {
			return writeError(c, fiber.StatusBadRequest, "LEXER_NOT_FOUND", "unknown lexer")
		}
		expiry, err := parseExpiry(req.Expiry)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRY", `expiry must be a positive duration or "never"`)
		}

		p, err := svc.Create(c.UserContext(), service.CreateInput{
			Raw:    req.Raw,
			Lexer:  req.Lexer,
			Expiry: expiry,
			Src:    req.Src,
		})
		if err != nil {
			return writePasteError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(createPasteResponse{
			PasteID:   p.PasteID,
			RemovalID: p.RemovalID,
			Lexer:     p.Lexer,
			Src:       p.Src,
			PubDate:   p.PubDate,
			ExpDate:   p.ExpDate,
		})
	}
}

// GetPaste returns the paste including its rendered markup.
func GetPaste(svc service.PasteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := lookupPaste(c, svc)
		if err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		return c.JSON(p)
	}
}

// GetRawPaste returns the submitted text unchanged as text/plain.
func GetRawPaste(svc service.PasteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := lookupPaste(c, svc)
		if err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		c.Type("txt", "utf-8")
		return c.SendString(p.Raw)
	}
}

// lookupPaste resolves :paste_id. A nil paste with a nil error means the
// error response has already been written.
func lookupPaste(c *fiber.Ctx, svc service.PasteService) (*model.Paste, error) {
	id := c.Params("paste_id")
	if !ident.Valid(id) {
		return nil, writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	p, err := svc.Get(c.UserContext(), id)
	if err != nil {
		return nil, writePasteError(c, err)
	}
	return p, nil
}

type removalResponse struct {
	PasteID string     `json:"paste_id"`
	Lexer   string     `json:"lexer"`
	PubDate time.Time  `json:"pub_date"`
	ExpDate *time.Time `json:"exp_date"`
}

// ResolveRemoval shows which paste :removal_id would delete so a client can
// confirm before sending DELETE.
func ResolveRemoval(svc service.PasteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("removal_id")
		if !ident.Valid(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := svc.ResolveRemoval(c.UserContext(), id)
		if err != nil {
			return writePasteError(c, err)
		}
		return c.JSON(removalResponse{
			PasteID: p.PasteID,
			Lexer:   p.Lexer,
			PubDate: p.PubDate,
			ExpDate: p.ExpDate,
		})
	}
}

// RemovePaste deletes the paste owning :removal_id and answers 204.
func RemovePaste(svc service.PasteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("removal_id")
		if !ident.Valid(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if _, err := svc.Remove(c.UserContext(), id); err != nil {
			return writePasteError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListLexers returns the names accepted in the lexer field.
func ListLexers() fiber.Handler {
	names := highlight.Names()
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"lexers": names})
	}
}

// writePasteError translates service and model errors into the standard
// error payload. Unknown errors never leak their text.
func writePasteError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrRawRequired):
		return writeError(c, fiber.StatusBadRequest, "RAW_REQUIRED", "raw is required")
	case errors.Is(err, model.ErrInvalidExpiry):
		return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRY", `expiry must be a positive duration or "never"`)
	case errors.Is(err, model.ErrLexerNotFound):
		return writeError(c, fiber.StatusBadRequest, "LEXER_NOT_FOUND", "unknown lexer")
	case errors.Is(err, service.ErrTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "PASTE_TOO_LARGE", "paste is too large")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "paste not found")
	case errors.Is(err, service.ErrExpired):
		return writeError(c, fiber.StatusGone, "EXPIRED", "paste has expired")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
