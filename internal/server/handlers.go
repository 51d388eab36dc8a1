package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/ironsheep/colony-counter-mcp/internal/annotation"
	"github.com/ironsheep/colony-counter-mcp/internal/batch"
	"github.com/ironsheep/colony-counter-mcp/internal/detection"
	"github.com/ironsheep/colony-counter-mcp/internal/export"
	"github.com/ironsheep/colony-counter-mcp/internal/imaging"
	"github.com/ironsheep/colony-counter-mcp/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "colony_load", "colony_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool call")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values from the server config
//  3. Resolves the image record and loads pixels from cache as needed
//  4. Calls the detection/annotation/imaging function
//  5. Commits state back to the session store on success
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Images and sessions
	case "colony_load":
		return s.handleColonyLoad(args)
	case "colony_preview":
		return s.handleColonyPreview(args)
	case "colony_remove":
		return s.handleColonyRemove(args)

	// Detection and tuning
	case "colony_detect":
		return s.handleColonyDetect(args)
	case "colony_sample":
		return s.handleColonySample(args)

	// Manual corrections
	case "colony_annotate":
		return s.handleColonyAnnotate(args)
	case "colony_list":
		return s.handleColonyList(args)

	// Visual review
	case "colony_overlay":
		return s.handleColonyOverlay(args)
	case "colony_crop":
		return s.handleColonyCrop(args)

	// Export and batch
	case "colony_results":
		return s.handleColonyResults(args)
	case "colony_batch":
		return s.handleColonyBatch(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// record looks up an image by id and loads its pixels.
func (s *Server) record(imageID string) (session.Record, image.Image, error) {
	if imageID == "" {
		return session.Record{}, nil, errors.New("image_id is required")
	}
	rec, err := s.store.Get(imageID)
	if err != nil {
		return session.Record{}, nil, err
	}
	img, err := s.cache.Load(rec.Path)
	if err != nil {
		return session.Record{}, nil, fmt.Errorf("failed to load image %s: %w", rec.Filename, err)
	}
	return rec, img, nil
}

// resolveParams overlays a partial parameter object on base. Fields the
// caller leaves out keep their base value.
func resolveParams(base detection.Params, raw json.RawMessage) (detection.Params, error) {
	p := base
	if len(raw) > 0 && string(raw) != "null" {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return detection.Params{}, fmt.Errorf("invalid params: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return detection.Params{}, err
	}
	return p, nil
}

// baseParams returns the record's last parameters, or the configured
// defaults before the first detection.
func (s *Server) baseParams(rec session.Record) detection.Params {
	if rec.Params != nil {
		return *rec.Params
	}
	return s.cfg.Params
}

// === Image and Session Handlers ===

type colonyLoadArgs struct {
	Path      string   `json:"path"`
	Paths     []string `json:"paths"`
	SessionID string   `json:"session_id"`
}

type loadedImage struct {
	ImageID string `json:"image_id"`
	*imaging.ImageInfo
}

type colonyLoadResult struct {
	SessionID string        `json:"session_id"`
	Images    []loadedImage `json:"images"`
}

func (s *Server) handleColonyLoad(args json.RawMessage) (interface{}, error) {
	var a colonyLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	paths := a.Paths
	if a.Path != "" {
		paths = append([]string{a.Path}, paths...)
	}
	if len(paths) == 0 {
		return nil, errors.New("no image paths given")
	}

	// Every file must decode before anything is registered.
	infos := make([]*imaging.ImageInfo, len(paths))
	for i, p := range paths {
		info, err := imaging.LoadImageInfo(s.cache, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		infos[i] = info
	}

	sessionID := a.SessionID
	if sessionID == "" {
		sessionID = s.store.NewSession()
	}
	out := colonyLoadResult{SessionID: sessionID}
	for i, info := range infos {
		rec, err := s.store.Register(sessionID, info.Filename, paths[i], info.Width, info.Height)
		if err != nil {
			return nil, err
		}
		out.Images = append(out.Images, loadedImage{ImageID: rec.ImageID, ImageInfo: info})
	}

	s.log.Info().Str("session", sessionID).Int("images", len(infos)).Msg("images registered")
	return out, nil
}

type colonyPreviewArgs struct {
	ImageID string `json:"image_id"`
	MaxSize int    `json:"max_size"`
}

func (s *Server) handleColonyPreview(args json.RawMessage) (interface{}, error) {
	var a colonyPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxSize == 0 {
		a.MaxSize = s.cfg.PreviewMaxSize
	}
	_, img, err := s.record(a.ImageID)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(img, a.MaxSize)
}

type colonyRemoveArgs struct {
	ImageID string `json:"image_id"`
}

type colonyRemoveResult struct {
	ImageID   string `json:"image_id"`
	SessionID string `json:"session_id"`
	Remaining int    `json:"remaining"`
}

// handleColonyRemove drops an image, its edits and its cached pixels. The
// session itself stays, even when it becomes empty.
func (s *Server) handleColonyRemove(args json.RawMessage) (interface{}, error) {
	var a colonyRemoveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImageID == "" {
		return nil, errors.New("image_id is required")
	}
	rec, err := s.store.Get(a.ImageID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Remove(a.ImageID); err != nil {
		return nil, err
	}
	s.cache.Evict(rec.Path)

	recs, err := s.store.Session(rec.SessionID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("session", rec.SessionID).Str("image", rec.ImageID).Msg("image removed")
	return colonyRemoveResult{ImageID: rec.ImageID, SessionID: rec.SessionID, Remaining: len(recs)}, nil
}

// === Detection Handlers ===

type colonyDetectArgs struct {
	ImageID     string          `json:"image_id"`
	Params      json.RawMessage `json:"params"`
	IncludeMask bool            `json:"include_mask"`
}

// colonyState is the reconciled view of one image returned by several
// tools.
type colonyState struct {
	ImageID   string `json:"image_id"`
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`

	annotation.Summary
	FinalCount int `json:"final_count"`

	Params   *detection.Params  `json:"parameters,omitempty"`
	Edits    int                `json:"edits"`
	Colonies []detection.Colony `json:"colonies,omitempty"`
}

func stateOf(rec session.Record, withColonies bool) colonyState {
	sum := rec.Summary()
	st := colonyState{
		ImageID:    rec.ImageID,
		SessionID:  rec.SessionID,
		Filename:   rec.Filename,
		Summary:    sum,
		FinalCount: sum.Count,
		Params:     rec.Params,
	}
	if rec.Log != nil {
		st.Edits = rec.Log.Len()
	}
	if withColonies {
		st.Colonies = rec.Colonies
	}
	return st
}

type colonyDetectResult struct {
	colonyState
	Mask *imaging.ImageResult `json:"mask,omitempty"`
}

func (s *Server) handleColonyDetect(args json.RawMessage) (interface{}, error) {
	var a colonyDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rec, img, err := s.record(a.ImageID)
	if err != nil {
		return nil, err
	}
	p, err := resolveParams(s.baseParams(rec), a.Params)
	if err != nil {
		return nil, err
	}

	set, err := detection.Detect(img, p)
	if err != nil {
		return nil, err
	}

	var mask *imaging.ImageResult
	if a.IncludeMask {
		m, err := detection.DetectMask(img, p)
		if err != nil {
			return nil, err
		}
		if mask, err = imaging.EncodeMask(m); err != nil {
			return nil, err
		}
	}

	// Reconcile under the store lock so edits appended concurrently are
	// part of the committed list.
	updated, err := s.store.Update(a.ImageID, func(r *session.Record) error {
		r.Params = &p
		r.Set = set
		r.Colonies = s.rec.Reconcile(set, r.Log.Edits(), r.Colonies)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("image", updated.ImageID).
		Int("auto", set.Count).
		Int("final", updated.Summary().Count).
		Msg("detection complete")

	return colonyDetectResult{colonyState: stateOf(updated, true), Mask: mask}, nil
}

type colonySampleArgs struct {
	ImageID string                 `json:"image_id"`
	Points  []imaging.LabeledPoint `json:"points"`
	Params  json.RawMessage        `json:"params"`
}

func (s *Server) handleColonySample(args json.RawMessage) (interface{}, error) {
	var a colonySampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return nil, errors.New("points array is required")
	}
	rec, img, err := s.record(a.ImageID)
	if err != nil {
		return nil, err
	}
	p, err := resolveParams(s.baseParams(rec), a.Params)
	if err != nil {
		return nil, err
	}
	return imaging.SampleIntensity(img, a.Points, p)
}

// === Annotation Handlers ===

// editArg is one manual correction. A remove may name a colony by id
// instead of giving a coordinate.
type editArg struct {
	Kind     annotation.EditKind `json:"kind"`
	X        *float64            `json:"x"`
	Y        *float64            `json:"y"`
	ColonyID string              `json:"colony_id"`
}

type colonyAnnotateArgs struct {
	ImageID string    `json:"image_id"`
	Clear   bool      `json:"clear"`
	Edits   []editArg `json:"edits"`
}

func (s *Server) handleColonyAnnotate(args json.RawMessage) (interface{}, error) {
	var a colonyAnnotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImageID == "" {
		return nil, errors.New("image_id is required")
	}
	if !a.Clear && len(a.Edits) == 0 {
		return nil, errors.New("no edits given")
	}

	updated, err := s.store.Update(a.ImageID, func(r *session.Record) error {
		if a.Clear {
			r.Log.Clear()
		}
		for i, e := range a.Edits {
			if err := applyEdit(r, e); err != nil {
				return fmt.Errorf("edit %d: %w", i, err)
			}
		}
		r.Colonies = s.rec.Reconcile(r.Set, r.Log.Edits(), r.Colonies)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("image", updated.ImageID).
		Int("edits", updated.Log.Len()).
		Int("final", updated.Summary().Count).
		Msg("annotations applied")

	return stateOf(updated, false), nil
}

func applyEdit(r *session.Record, e editArg) error {
	if e.ColonyID != "" {
		if e.Kind != "" && e.Kind != annotation.EditRemove {
			return errors.New("colony_id is only valid for remove edits")
		}
		c, ok := annotation.Find(r.Colonies, e.ColonyID)
		if !ok {
			return fmt.Errorf("colony %s: %w", e.ColonyID, session.ErrNotFound)
		}
		if !c.Active() {
			return fmt.Errorf("colony %s is already removed", e.ColonyID)
		}
		_, err := r.Log.RemoveColony(c)
		return err
	}
	if e.X == nil || e.Y == nil {
		return errors.New("x and y are required")
	}
	_, err := r.Log.Append(annotation.Edit{Kind: e.Kind, Point: detection.Point{X: *e.X, Y: *e.Y}})
	return err
}

type colonyListArgs struct {
	ImageID        string `json:"image_id"`
	IncludeRemoved bool   `json:"include_removed"`
	IncludeEdits   bool   `json:"include_edits"`
}

type colonyListResult struct {
	colonyState
	EditLog []annotation.Edit `json:"edit_log,omitempty"`
}

func (s *Server) handleColonyList(args json.RawMessage) (interface{}, error) {
	var a colonyListArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(a.ImageID)
	if err != nil {
		return nil, err
	}
	out := colonyListResult{colonyState: stateOf(rec, true)}
	if !a.IncludeRemoved {
		out.Colonies = annotation.Active(rec.Colonies)
	}
	if a.IncludeEdits {
		out.EditLog = rec.Log.Edits()
	}
	return out, nil
}

// === Visual Review Handlers ===

type colonyOverlayArgs struct {
	ImageID     string `json:"image_id"`
	ShowRemoved bool   `json:"show_removed"`
	ShowIDs     bool   `json:"show_ids"`
	Radius      int    `json:"radius"`
}

func (s *Server) handleColonyOverlay(args json.RawMessage) (interface{}, error) {
	var a colonyOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rec, img, err := s.record(a.ImageID)
	if err != nil {
		return nil, err
	}

	style := imaging.OverlayStyle{
		AutomaticColor: s.cfg.AutomaticColor,
		ManualColor:    s.cfg.ManualColor,
		RemovedColor:   s.cfg.RemovedColor,
		Radius:         s.cfg.MarkerRadius,
		ShowRemoved:    a.ShowRemoved,
		ShowIDs:        a.ShowIDs,
	}
	if a.Radius != 0 {
		style.Radius = a.Radius
	}
	return imaging.Overlay(img, rec.Colonies, style)
}

type colonyCropArgs struct {
	ImageID  string  `json:"image_id"`
	ColonyID string  `json:"colony_id"`
	Padding  *int    `json:"padding"`
	Scale    float64 `json:"scale"`
}

func (s *Server) handleColonyCrop(args json.RawMessage) (interface{}, error) {
	var a colonyCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	padding := 10
	if a.Padding != nil {
		padding = *a.Padding
	}
	if a.Scale == 0 {
		a.Scale = 4.0
	}
	rec, img, err := s.record(a.ImageID)
	if err != nil {
		return nil, err
	}
	c, ok := annotation.Find(rec.Colonies, a.ColonyID)
	if !ok {
		return nil, fmt.Errorf("colony %s: %w", a.ColonyID, session.ErrNotFound)
	}
	return imaging.CropColony(img, c, padding, a.Scale)
}

// === Export and Batch Handlers ===

type colonyResultsArgs struct {
	SessionID       string `json:"session_id"`
	IncludeColonies bool   `json:"include_colonies"`
}

type colonyResultsResult struct {
	SessionID   string         `json:"session_id"`
	Images      int            `json:"images"`
	Total       int            `json:"total"`
	Results     []batch.Result `json:"results"`
	CSV         string         `json:"csv"`
	ColoniesCSV string         `json:"colonies_csv,omitempty"`
}

func (s *Server) handleColonyResults(args json.RawMessage) (interface{}, error) {
	var a colonyResultsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	recs, err := s.store.Session(a.SessionID)
	if err != nil {
		return nil, err
	}

	out := colonyResultsResult{SessionID: a.SessionID, Images: len(recs)}
	// Images counted only by hand export their manual count with empty
	// parameters.
	for _, rec := range recs {
		r := batch.Result{
			ImageID:  rec.ImageID,
			Filename: rec.Filename,
			Summary:  rec.Summary(),
			Params:   rec.Params,
			Colonies: rec.Colonies,
		}
		out.Total += r.Count
		out.Results = append(out.Results, r)
	}

	if out.CSV, out.ColoniesCSV, err = renderCSV(out.Results, a.IncludeColonies); err != nil {
		return nil, err
	}
	if !a.IncludeColonies {
		for i := range out.Results {
			out.Results[i].Colonies = nil
		}
	}
	return out, nil
}

func renderCSV(results []batch.Result, colonies bool) (string, string, error) {
	var rows bytes.Buffer
	if err := export.WriteResults(&rows, results); err != nil {
		return "", "", fmt.Errorf("failed to write csv: %w", err)
	}
	if !colonies {
		return rows.String(), "", nil
	}
	var cols bytes.Buffer
	if err := export.WriteColonies(&cols, results); err != nil {
		return "", "", fmt.Errorf("failed to write csv: %w", err)
	}
	return rows.String(), cols.String(), nil
}

type colonyBatchArgs struct {
	SessionID       string          `json:"session_id"`
	Paths           []string        `json:"paths"`
	Params          json.RawMessage `json:"params"`
	Workers         int             `json:"workers"`
	IncludeColonies bool            `json:"include_colonies"`
}

type colonyBatchResult struct {
	batch.Report
	CSV         string `json:"csv"`
	ColoniesCSV string `json:"colonies_csv,omitempty"`
}

func (s *Server) handleColonyBatch(args json.RawMessage) (interface{}, error) {
	var a colonyBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.SessionID == "" && len(a.Paths) == 0 {
		return nil, errors.New("session_id or paths is required")
	}
	if a.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", a.Workers)
	}

	var items []batch.Item
	if a.SessionID != "" {
		recs, err := s.store.Session(a.SessionID)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			p, err := resolveParams(s.baseParams(rec), a.Params)
			if err != nil {
				return nil, err
			}
			path := rec.Path
			items = append(items, batch.Item{
				ImageID:  rec.ImageID,
				Filename: rec.Filename,
				Load:     func() (image.Image, error) { return s.cache.Load(path) },
				Params:   p,
				Edits:    rec.Log.Edits(),
				Previous: rec.Colonies,
			})
		}
	}

	p, err := resolveParams(s.cfg.Params, a.Params)
	if err != nil {
		return nil, err
	}
	for _, path := range a.Paths {
		path := path
		items = append(items, batch.Item{
			Filename: filepath.Base(path),
			Load: func() (image.Image, error) {
				img, _, err := imaging.Decode(path)
				return img, err
			},
			Params: p,
		})
	}

	workers := a.Workers
	if workers == 0 {
		workers = s.cfg.Workers
	}
	report := batch.Run(items, batch.Options{
		Workers:      workers,
		Tolerance:    s.cfg.Tolerance,
		KeepColonies: a.IncludeColonies,
		Logger:       s.log,
	})

	out := colonyBatchResult{Report: report}
	if out.CSV, out.ColoniesCSV, err = renderCSV(report.Results, a.IncludeColonies); err != nil {
		return nil, err
	}
	return out, nil
}
