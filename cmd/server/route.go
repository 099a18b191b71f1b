package main

import (
	"github.com/matryer/way"
	"github.com/zucenko/mazerace/server"
)

const URI_WS = "/play"
const URI_QR = "/qr"

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_WS, s.GameServer.HandleHttpCall())
	s.router.HandleFunc("GET", URI_QR, server.HandleQR(URI_WS))
}
