package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/inamate/whiteboard/internal/auth"
	"github.com/inamate/whiteboard/internal/board"
	"github.com/inamate/whiteboard/internal/collab"
	"github.com/inamate/whiteboard/internal/discovery"
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/export"
	"github.com/inamate/whiteboard/internal/peer"
	"github.com/inamate/whiteboard/internal/whiteboard"
)

func runGuest(ctx context.Context, g *globals, args []string) error {
	result, err := guestToken(ctx, g)
	if err != nil {
		return err
	}
	fmt.Println(result.Token)
	return nil
}

func runCreate(ctx context.Context, g *globals, args []string) error {
	var b board.Board
	if err := doJSON(ctx, g, http.MethodPost, "/api/boards", nil, &b); err != nil {
		return err
	}
	fmt.Println(b.ID)
	return nil
}

func runHistory(ctx context.Context, g *globals, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("n", 10, "Number of versions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var versions []board.Version
	path := fmt.Sprintf("/api/boards/%s/history?limit=%d", url.PathEscape(g.board), *limit)
	if err := doJSON(ctx, g, http.MethodGet, path, nil, &versions); err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Printf("v%-4d %-40s %4d elements  %s\n", v.Version, v.ID, v.Elements, v.CreatedAt)
	}
	return nil
}

func runWatch(ctx context.Context, g *globals, args []string) error {
	opts := peer.Options{
		OnRoster: func(users []collab.Participant) {
			names := make([]string, len(users))
			for i, u := range users {
				names[i] = u.DisplayName
			}
			g.logger.Info("roster", "users", strings.Join(names, ", "))
		},
		OnRemote: func(s *whiteboard.Session, cleared bool) {
			snap := s.Snapshot()
			g.logger.Info("board updated",
				"cleared", cleared,
				"lines", len(snap.Line),
				"boxes", len(snap.Box),
				"pencil", len(snap.Pencil),
				"text", len(snap.Text),
			)
		},
	}
	return withPeer(ctx, g, opts, func(ctx context.Context, c *peer.Client, done <-chan error) error {
		g.logger.Info("watching", "board", g.board)
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return nil
		}
	})
}

func runLine(ctx context.Context, g *globals, args []string) error {
	return drawDrag(ctx, g, whiteboard.ToolLine, args)
}

func runBox(ctx context.Context, g *globals, args []string) error {
	return drawDrag(ctx, g, whiteboard.ToolBox, args)
}

// drawDrag presses at the first point and releases at the second.
func drawDrag(ctx context.Context, g *globals, name whiteboard.ToolName, args []string) error {
	pts, err := parseFloats(args, 4)
	if err != nil {
		return err
	}
	return oneShot(ctx, g, func(s *whiteboard.Session) error {
		if err := s.SetTool(name); err != nil {
			return err
		}
		s.PointerDown(pts[0], pts[1])
		s.PointerMove(pts[2], pts[3])
		s.PointerUp(pts[2], pts[3])
		return nil
	})
}

func runText(ctx context.Context, g *globals, args []string) error {
	if len(args) < 3 {
		return errors.New("text needs x y label")
	}
	pts, err := parseFloats(args[:2], 2)
	if err != nil {
		return err
	}
	label := strings.Join(args[2:], " ")
	return oneShot(ctx, g, func(s *whiteboard.Session) error {
		if err := s.SetTool(whiteboard.ToolText); err != nil {
			return err
		}
		s.PointerDown(pts[0], pts[1])
		s.SetText(label)
		if !s.KeyUp(whiteboard.KeyEnter) {
			return errors.New("text was not placed")
		}
		return nil
	})
}

func runClear(ctx context.Context, g *globals, args []string) error {
	return oneShot(ctx, g, func(s *whiteboard.Session) error {
		s.Clear()
		return nil
	})
}

func runExport(ctx context.Context, g *globals, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "", "Output file (board.<format> by default)")
	format := fs.String("format", "pdf", "Output format: pdf or png")
	local := fs.Bool("local", false, "Render from the snapshot instead of asking the relay")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "pdf" && *format != "png" {
		return fmt.Errorf("unknown format %q", *format)
	}
	if *out == "" {
		*out = "board." + *format
	}

	var data []byte
	if *local {
		body, err := get(ctx, g, fmt.Sprintf("/api/boards/%s/snapshot", url.PathEscape(g.board)))
		if err != nil {
			return err
		}
		snap, _, err := document.DecodePayload(string(body))
		if err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		var buf bytes.Buffer
		if *format == "png" {
			err = export.RenderPNG(&buf, snap, export.ThumbnailWidth, export.ThumbnailHeight)
		} else {
			err = export.RenderPDF(&buf, snap)
		}
		if err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		name := "export.pdf"
		if *format == "png" {
			name = "thumbnail.png"
		}
		body, err := get(ctx, g, fmt.Sprintf("/api/boards/%s/%s", url.PathEscape(g.board), name))
		if err != nil {
			return err
		}
		data = body
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	g.logger.Info("exported", "board", g.board, "file", *out)
	return nil
}

func runDiscover(ctx context.Context, g *globals, args []string) error {
	services, err := discovery.Browse(ctx, g.timeout)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		fmt.Fprintln(os.Stderr, "No relays found")
		return nil
	}
	for _, s := range services {
		fmt.Printf("%-30s http://%s\n", s.Instance, s.Addr)
	}
	return nil
}

// oneShot joins the board, runs fn on the session and leaves once the
// resulting snapshot has been sent.
func oneShot(ctx context.Context, g *globals, fn func(s *whiteboard.Session) error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	return withPeer(ctx, g, peer.Options{}, func(ctx context.Context, c *peer.Client, _ <-chan error) error {
		var fnErr error
		if err := c.Do(ctx, func(s *whiteboard.Session) { fnErr = fn(s) }); err != nil {
			return err
		}
		return fnErr
	})
}

// withPeer dials the board, waits for the current board and hands the
// connected client to fn. done yields Run's result.
func withPeer(ctx context.Context, g *globals, opts peer.Options, fn func(ctx context.Context, c *peer.Client, done <-chan error) error) error {
	if g.token == "" {
		if result, err := guestToken(ctx, g); err != nil {
			g.logger.Debug("guest token unavailable, joining anonymously", "error", err)
		} else {
			g.token = result.Token
		}
	}

	opts.Token = g.token
	opts.Logger = g.logger
	c, err := peer.Dial(ctx, g.relay, g.board, opts)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()
	defer func() {
		c.Close()
		cancel()
	}()

	welcome, err := c.Welcome(ctx)
	if err != nil {
		return fmt.Errorf("join %s: %w", g.board, err)
	}
	g.logger.Debug("joined", "board", welcome.BoardID, "client", welcome.ClientID)

	return fn(ctx, c, done)
}

func guestToken(ctx context.Context, g *globals) (*auth.AuthResult, error) {
	body, err := json.Marshal(map[string]string{"displayName": g.name})
	if err != nil {
		return nil, err
	}
	var result auth.AuthResult
	if err := doJSON(ctx, g, http.MethodPost, "/auth/guest", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func doJSON(ctx context.Context, g *globals, method, path string, body io.Reader, out any) error {
	data, err := request(ctx, g, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func get(ctx context.Context, g *globals, path string) ([]byte, error) {
	return request(ctx, g, http.MethodGet, path, nil)
}

func request(ctx context.Context, g *globals, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(g.relay, "/")+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%s %s: %s", method, path, e.Error)
		}
		return nil, fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return data, nil
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = v
	}
	return out, nil
}
