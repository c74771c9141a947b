// Package inspect serves a read-only JSON view of a scene graph over HTTP.
package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/phanxgames/lumen"
)

// Matrix is a 3x4 transform in row-major order.
type Matrix [3][4]float32

func matrixOf(t lumen.Transform) Matrix {
	var m Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			m[r][c] = t.At(r, c)
		}
	}
	return m
}

// Entity is one attachment of a node.
type Entity struct {
	ID   lumen.EntityID `json:"id"`
	Kind string         `json:"kind"`
	Name string         `json:"name"`
}

// Node is the JSON form of a node.
type Node struct {
	ID       lumen.NodeID   `json:"id"`
	Name     string         `json:"name,omitempty"`
	Parent   lumen.NodeID   `json:"parent,omitempty"`
	Children []lumen.NodeID `json:"children"`
	// Dirty is the state before the request. Serving the node computes its
	// world transform, so the node itself is clean afterwards.
	Dirty    bool     `json:"dirty"`
	Local    Matrix   `json:"local"`
	World    Matrix   `json:"world"`
	Entities []Entity `json:"entities"`
}

// TreeNode is a node in the nested /graph view.
type TreeNode struct {
	ID       lumen.NodeID `json:"id"`
	Name     string       `json:"name,omitempty"`
	Entities int          `json:"entities"`
	Children []*TreeNode  `json:"children,omitempty"`
}

// Graph is the JSON form of a whole graph.
type Graph struct {
	ID    string    `json:"id"`
	Nodes int       `json:"nodes"`
	Root  *TreeNode `json:"root"`
}

type server struct {
	graph *lumen.Graph
	mu    sync.Locker
	log   *slog.Logger
}

// NewHandler returns an http.Handler exposing g:
//
//	GET /graph        nested tree of every node
//	GET /nodes/{id}   one node with its transforms and entities
//	GET /validate     result of Graph.Validate
//
// mu is held while the graph is read; pass the lock that guards the caller's
// frame loop. Reading a node's world transform may recompute it.
func NewHandler(g *lumen.Graph, mu sync.Locker) http.Handler {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	s := &server{graph: g, mu: mu, log: g.Logger().With("component", "inspect")}

	r := mux.NewRouter()
	r.HandleFunc("/graph", s.handleGraph).Methods(http.MethodGet)
	r.HandleFunc("/nodes/{id:[0-9]+}", s.handleNode).Methods(http.MethodGet)
	r.HandleFunc("/validate", s.handleValidate).Methods(http.MethodGet)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError)),
	)(r)
}

func (s *server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := Graph{
		ID:    s.graph.ID().String(),
		Nodes: s.graph.NumNodes(),
		Root:  buildTree(s.graph.Root()),
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, out)
}

func buildTree(n *lumen.Node) *TreeNode {
	t := &TreeNode{ID: n.ID(), Name: n.Name, Entities: n.NumRenderables() + n.NumLights()}
	for _, c := range n.Children() {
		t.Children = append(t.Children, buildTree(c))
	}
	return t
}

func (s *server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "parse node id"))
		return
	}

	s.mu.Lock()
	n := s.graph.NodeByID(lumen.NodeID(id))
	var out Node
	if n != nil {
		out = describe(n)
	}
	s.mu.Unlock()

	if n == nil {
		s.writeError(w, http.StatusNotFound, errors.Errorf("node %d not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func describe(n *lumen.Node) Node {
	dirty := n.Dirty()
	world := n.WorldTransform()
	out := Node{
		ID:       n.ID(),
		Name:     n.Name,
		Children: make([]lumen.NodeID, 0, n.NumChildren()),
		Entities: make([]Entity, 0, n.NumRenderables()+n.NumLights()),
		Dirty:    dirty,
		Local:    matrixOf(n.Transform()),
		World:    matrixOf(world),
	}
	if p := n.Parent(); p != nil {
		out.Parent = p.ID()
	}
	for _, c := range n.Children() {
		out.Children = append(out.Children, c.ID())
	}
	n.ForEachRenderable(func(r lumen.Renderable, id lumen.EntityID) {
		out.Entities = append(out.Entities, Entity{ID: id, Kind: "renderable", Name: r.Name()})
	})
	n.ForEachLight(func(l lumen.Light, id lumen.EntityID) {
		out.Entities = append(out.Entities, Entity{ID: id, Kind: "light", Name: l.Name()})
	})
	return out
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.graph.Validate()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.Warn("write response", "err", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	type jError struct {
		Error string `json:"error"`
	}
	s.log.Error("inspect request failed", "status", status, "err", err)
	data, _ := json.Marshal(&jError{Error: err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
