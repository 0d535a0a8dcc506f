package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"gregoryjjb/ringlist/ring"
)

/////////////////////
// Response helpers

func RespondInternalServiceError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(err.Error()))
}

func RespondNotFoundError(w http.ResponseWriter, body string) {
	w.WriteHeader(http.StatusNotFound)
	if body == "" {
		body = "Not found"
	}
	RespondText(w, body)
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	RespondText(w, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusConflict)
	RespondText(w, message)
}

func RespondText(w http.ResponseWriter, body string) {
	w.Write([]byte(body))
}

func RespondJSON(w http.ResponseWriter, body any) {
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		RespondInternalServiceError(w, err)
	}
}

// RespondRingError maps ring and playground errors onto status codes
func RespondRingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ring.ErrEmptyContainer):
		RespondConflict(w, err.Error())
	case errors.Is(err, ring.ErrInvalidIterator),
		errors.Is(err, ring.ErrInvalidAdvance),
		errors.Is(err, ring.ErrInvalidDereference),
		errors.Is(err, ErrValidation):
		RespondBadRequest(w, err.Error())
	default:
		RespondInternalServiceError(w, err)
	}
}

type RingState struct {
	Values []string `json:"values"`
	Size   int      `json:"size"`
}

type valueBody struct {
	Value string `json:"value"`
}

type matchesBody struct {
	Values []string `json:"values"`
}

func ringState(pg *Playground) RingState {
	values := pg.Values()
	return RingState{Values: values, Size: len(values)}
}

func offsetParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "offset")
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: offset %q is not a number", ErrValidation, raw)
	}
	return offset, nil
}

func NewRouter(buildInfo BuildInfo, playground *Playground) chi.Router {
	r := chi.NewRouter()
	r.Use(LoggerMiddleware(&log.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, buildInfo)
		})

		r.Get("/ring", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, ringState(playground))
		})

		r.Delete("/ring", func(w http.ResponseWriter, r *http.Request) {
			playground.Clear()
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/ring/front", func(w http.ResponseWriter, r *http.Request) {
			front, err := playground.Front()
			if err != nil {
				RespondRingError(w, err)
				return
			}
			RespondJSON(w, valueBody{Value: front})
		})

		r.Post("/ring/front", func(w http.ResponseWriter, r *http.Request) {
			var body valueBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				RespondBadRequest(w, err.Error())
				return
			}

			playground.PushFront(body.Value)
			RespondJSON(w, ringState(playground))
		})

		r.Delete("/ring/front", func(w http.ResponseWriter, r *http.Request) {
			popped, err := playground.PopFront()
			if err != nil {
				RespondRingError(w, err)
				return
			}
			RespondJSON(w, valueBody{Value: popped})
		})

		r.Post("/ring/after/{offset}", func(w http.ResponseWriter, r *http.Request) {
			offset, err := offsetParam(r)
			if err != nil {
				RespondRingError(w, err)
				return
			}

			var body valueBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				RespondBadRequest(w, err.Error())
				return
			}

			if err := playground.InsertAfter(offset, body.Value); err != nil {
				RespondRingError(w, err)
				return
			}
			RespondJSON(w, ringState(playground))
		})

		r.Delete("/ring/after/{offset}", func(w http.ResponseWriter, r *http.Request) {
			offset, err := offsetParam(r)
			if err != nil {
				RespondRingError(w, err)
				return
			}

			erased, err := playground.EraseAfter(offset)
			if err != nil {
				RespondRingError(w, err)
				return
			}
			RespondJSON(w, valueBody{Value: erased})
		})

		r.Post("/ring/matches", func(w http.ResponseWriter, r *http.Request) {
			var body matchesBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				RespondBadRequest(w, err.Error())
				return
			}

			RespondJSON(w, map[string]bool{"matches": playground.Matches(body.Values)})
		})

		r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
			RespondJSON(w, playground.History())
		})
	})

	r.Get("/ws", createWebsocketHandler(playground))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		RespondNotFoundError(w, "")
	})

	return r
}

// StartServer serves until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, config *Config, buildInfo BuildInfo, playground *Playground) error {
	server := &http.Server{
		Addr:    config.Address(),
		Handler: NewRouter(buildInfo, playground),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", server.Addr).Msg("launching server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
