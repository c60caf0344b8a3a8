package httpapi

import "net/http"

func (h *Handler) LockGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockGame")
	defer span.End()

	if err := h.lockService.Lock(ctx, gameIDFromPath(r)); err != nil {
		h.logger.ErrorContext(ctx, "lock game failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"locked": true})
}

func (h *Handler) UnlockGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnlockGame")
	defer span.End()

	if err := h.lockService.Unlock(ctx, gameIDFromPath(r)); err != nil {
		h.logger.ErrorContext(ctx, "unlock game failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"locked": false})
}

func (h *Handler) ReleaseNumbers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReleaseNumbers")
	defer span.End()

	if err := h.numbersService.Release(ctx, gameIDFromPath(r)); err != nil {
		h.logger.ErrorContext(ctx, "release numbers failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"numbersReleased": true})
}
