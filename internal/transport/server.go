package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eke/internal/domain"
)

// Server is an http.Handler exposing a responder service.
type Server struct {
	svc domain.ResponderService
	log *slog.Logger
	mux *http.ServeMux
}

// NewServer routes the handshake endpoints to svc.
func NewServer(svc domain.ResponderService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{svc: svc, log: log.With("component", "http"), mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /register", s.handleRegister)
	s.mux.HandleFunc("POST /"+domain.Round12.String(), s.handleRound(domain.Round12))
	s.mux.HandleFunc("POST /"+domain.Round34.String(), s.handleRound(domain.Round34))
	s.mux.HandleFunc("POST /"+domain.Round56.String(), s.handleRound(domain.Round56))
	s.mux.HandleFunc("POST /send", s.handleSend)
	s.mux.HandleFunc("POST /close", s.handleClose)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

// ServeHTTP logs one access line per request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	r.Body = http.MaxBytesReader(rec, r.Body, MaxBodyBytes)
	s.mux.ServeHTTP(rec, r)
	s.log.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start),
		"remote", r.RemoteAddr)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerJSON
	if !s.decode(w, r, &in) {
		return
	}
	reg, err := in.decode()
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.svc.RegisterSecret(r.Context(), reg); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": reg.Username.String()})
}

func (s *Server) handleRound(round domain.Round) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, ok := s.frame(w, r)
		if !ok {
			return
		}
		out, err := dispatch(r.Context(), s.svc, round, f)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, encodeFrame(out))
	}
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	f, ok := s.frame(w, r)
	if !ok {
		return
	}
	reply, err := s.svc.Exchange(r.Context(), f.Username, f.NegotiationID, f.Data)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeFrame(domain.Frame{
		Username: f.Username, NegotiationID: f.NegotiationID, Data: reply,
	}))
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	f, ok := s.frame(w, r)
	if !ok {
		return
	}
	if err := s.svc.Close(r.Context(), f.Username, f.NegotiationID); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dispatch runs one handshake round against svc. Loopback shares it.
func dispatch(ctx context.Context, svc domain.ResponderService, round domain.Round, f domain.Frame) (domain.Frame, error) {
	out := domain.Frame{Username: f.Username, NegotiationID: f.NegotiationID}
	var err error
	switch round {
	case domain.Round12:
		out.NegotiationID, out.Data, err = svc.Negotiate12(ctx, f.Username, f.Data)
	case domain.Round34:
		out.Data, err = svc.Negotiate34(ctx, f.Username, f.NegotiationID, f.Data)
	case domain.Round56:
		out.Data, err = svc.Negotiate56(ctx, f.Username, f.NegotiationID, f.Data)
	default:
		err = fmt.Errorf("%w: unknown round %d", ErrBadRequest, round)
	}
	if err != nil {
		return domain.Frame{}, err
	}
	return out, nil
}

func (s *Server) frame(w http.ResponseWriter, r *http.Request) (domain.Frame, bool) {
	var in frameJSON
	if !s.decode(w, r, &in) {
		return domain.Frame{}, false
	}
	f, err := in.decode()
	if err != nil {
		s.fail(w, err)
		return domain.Frame{}, false
	}
	return f, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "bad_request", "request body too large")
			return false
		}
		s.fail(w, fmt.Errorf("%w: invalid JSON body", ErrBadRequest))
		return false
	}
	return true
}

// fail writes err as a JSON error. Only the error text goes on the wire;
// no error in this module carries key material.
func (s *Server) fail(w http.ResponseWriter, err error) {
	code, status := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("internal error", "err", err)
		msg = http.StatusText(status)
	}
	writeError(w, status, code, msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorJSON{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
