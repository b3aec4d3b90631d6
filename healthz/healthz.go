// Package healthz serves liveness and render progress on the debug port.
package healthz

import (
	"fmt"
	"net/http"
	"sync"
)

// Progress tracks how far along a render is.  Its Update method has the
// shape of render.ProgressFunction.
type Progress struct {
	mu    sync.Mutex
	done  int
	total int
}

func (p *Progress) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = done
	p.total = total
}

func (p *Progress) Get() (done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.total
}

type Handler struct {
	progress *Progress
}

// New returns a handler that always answers 200.  If progress is non-nil,
// the body also reports rows rendered so far.
func New(progress *Progress) *Handler {
	return &Handler{progress: progress}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.progress == nil {
		w.Write([]byte("200 OK"))
		return
	}
	done, total := h.progress.Get()
	fmt.Fprintf(w, "200 OK\nrows %d/%d\n", done, total)
}
