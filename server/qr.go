package server

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// PlayURL is the websocket address a browser on r's host would join.
func PlayURL(r *http.Request, path string) string {
	scheme := "ws"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "wss"
	}
	return scheme + "://" + r.Host + path
}

// HandleQR serves a PNG QR code of the play URL so a second player can join
// from a phone.
func HandleQR(playPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		png, err := qrcode.Encode(PlayURL(r, playPath), qrcode.Medium, qrSize)
		if err != nil {
			log.WithError(err).Error("HandleQR encode")
			http.Error(w, "unable to generate qr code", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write(png); err != nil {
			log.WithError(err).Debug("HandleQR write")
		}
	}
}
