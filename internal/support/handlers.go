package support

import (
	"net/http"
	"strings"

	"github.com/embervale/backend-vapor/internal/common"
)

// Handler exposes the support bot endpoint.
type Handler struct {
	Bot *Bot
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Reply   string `json:"reply"`
	Matched bool   `json:"matched"`
}

// Ask answers a free-text support question with a canned reply.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		common.RenderError(w, common.BadRequest("message is required"))
		return
	}
	reply, matched := h.Bot.Reply(req.Message)
	common.JSONData(w, http.StatusOK, askResponse{Reply: reply, Matched: matched}, nil)
}
