package main

import (
	"net/http"

	"github.com/AdamBeresnev/doubles-bracket/internal/httputil"
	"github.com/skip2/go-qrcode"
)

// serveWs subscribes the connection to changes of one tournament. Messages
// only say what changed, clients fetch the bracket again.
func (app *application) serveWs(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}
	if _, err := app.tournaments.GetTournament(r.Context(), id); err != nil {
		serviceError(w, "Failed to get tournament", err)
		return
	}

	app.hub.ServeWs(w, r, id.String())
}

// signupQRCode renders the signup link as a PNG to show on a projector.
func (app *application) signupQRCode(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		httputil.NotFound(w, "Tournament not found", err)
		return
	}
	tournament, err := app.tournaments.GetTournament(r.Context(), id)
	if err != nil {
		serviceError(w, "Failed to get tournament", err)
		return
	}

	png, err := qrcode.Encode(app.signupURL(tournament), qrcode.Medium, 256)
	if err != nil {
		httputil.InternalServerError(w, "Failed to generate QR code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
