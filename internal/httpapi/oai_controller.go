package httpapi

import (
	"encoding/xml"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/turahe/kuha-go/internal/engine"
	"github.com/turahe/kuha-go/internal/oaierrors"
	"github.com/turahe/kuha-go/pkg/logger"

	"go.uber.org/zap"
)

// OAIHandler serves the single /oai endpoint, the data-provider's
// only public surface.
type OAIHandler struct {
	engine  *engine.Engine
	baseURL string
}

func NewOAIHandler(eng *engine.Engine, baseURL string) *OAIHandler {
	return &OAIHandler{engine: eng, baseURL: baseURL}
}

// Dispatch handles GET and POST per spec §6: parameters come from the
// query string on GET, from the urlencoded body on POST.
func (h *OAIHandler) Dispatch(c *fiber.Ctx) error {
	req := engine.Request{Params: map[string][]string{}}

	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		name := string(key)
		req.Params[name] = append(req.Params[name], string(value))
	})
	if c.Method() == fiber.MethodPost {
		c.Context().PostArgs().VisitAll(func(key, value []byte) {
			name := string(key)
			req.Params[name] = append(req.Params[name], string(value))
		})
	}

	resp, err := h.engine.Dispatch(c.UserContext(), req)

	var protoErr oaierrors.Error
	if err != nil && !errors.As(err, &protoErr) {
		logger.Log.Error("httpapi: engine dispatch failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	var env envelope
	if protoErr != nil {
		env = renderError(resp.ResponseTime, h.baseURL, resp.RequestVerb, resp.RequestArgs, protoErr)
	} else {
		env = renderResponse(h.baseURL, resp)
	}
	return writeXML(c, env)
}

// writeXML marshals env with the XML declaration OAI-PMH responses
// are required to carry -- fiber's own c.XML omits it.
func writeXML(c *fiber.Ctx, env envelope) error {
	body, err := xml.MarshalIndent(env, "", "  ")
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render response")
	}
	c.Set(fiber.HeaderContentType, "text/xml; charset=UTF-8")
	return c.Status(fiber.StatusOK).Send(append([]byte(xml.Header), body...))
}
