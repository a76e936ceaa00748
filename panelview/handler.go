// Copyright 2022 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelview

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

type client struct {
	refresh chan struct{}
	done    chan struct{}
}

// Handler returns the HTTP routes serving d.
func (d *Display) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://*", "https://*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Get("/", d.serveStream)
	r.Get("/snapshot", d.serveSnapshot)
	return r
}

// format returns the format requested by r, or the default.
func (d *Display) format(r *http.Request) (Format, error) {
	if v := r.URL.Query().Get("format"); v != "" {
		return ParseFormat(v)
	}
	return d.opts.Format, nil
}

func (d *Display) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	f, err := d.format(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, seq, err := d.snapshot(f)
	if err != nil {
		log.Error().Err(err).Msg("panelview: encoding snapshot")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer bufferPool.put(b)
	w.Header().Set("Content-Type", f.MediaType())
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.Header().Set("X-Frame", strconv.FormatUint(seq, 10))
	if _, err := w.Write(b); err != nil {
		log.Debug().Err(err).Msg("panelview: writing snapshot")
	}
}

// serveStream sends the current image, then a new one after every Draw
// until the client goes away or the Display is halted.
func (d *Display) serveStream(w http.ResponseWriter, r *http.Request) {
	f, err := d.format(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pw := newPartWriter(w)
	w.Header().Set("Content-Type", mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{"boundary": pw.boundary}))

	c := &client{refresh: make(chan struct{}, 1), done: make(chan struct{}, 1)}
	d.mu.Lock()
	d.clients[c] = struct{}{}
	if d.halted {
		c.done <- struct{}{}
	}
	d.mu.Unlock()
	log.Debug().Str("remote", r.RemoteAddr).Stringer("format", f).Msg("panelview: client connected")
	defer func() {
		d.mu.Lock()
		delete(d.clients, c)
		d.mu.Unlock()
		log.Debug().Str("remote", r.RemoteAddr).Msg("panelview: client gone")
	}()

	for {
		b, seq, err := d.snapshot(f)
		if err != nil {
			// The status line is gone; the stream just ends.
			log.Error().Err(err).Msg("panelview: encoding frame")
			return
		}
		err = pw.writePart(f, seq, b)
		bufferPool.put(b)
		if err != nil {
			return
		}
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		select {
		case <-c.refresh:
		case <-c.done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
