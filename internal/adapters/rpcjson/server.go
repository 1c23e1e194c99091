package rpcjson

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/atvirokodosprendimai/pressroom/internal/application"
	"github.com/atvirokodosprendimai/pressroom/internal/domain"
)

type Server struct {
	writes   *application.WriteService
	reads    *application.ReadService
	token    string
	listener net.Listener
	path     string
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  any         `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func Start(path string, writes *application.WriteService, reads *application.ReadService, token string) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rpc socket path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}

	s := &Server{writes: writes, reads: reads, token: token, listener: ln, path: path}
	go s.serve()
	return s, nil
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}, ID: nil})
			return
		}

		resp := s.dispatch(context.Background(), req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32600, Message: "invalid request"}, ID: req.ID}
	}

	switch req.Method {
	case "account.create":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token     string `json:"token"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Email     string `json:"email"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.writes.CreateAccount(ctx, application.CreateAccountInput{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "account.get":
		var p struct {
			Token string `json:"token"`
			ID    uint   `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.reads.GetAccountByID(ctx, p.ID)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "account.list":
		var p struct {
			Token string `json:"token"`
			Q     string `json:"q"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.reads.ListAccounts(ctx, p.Q, 500)
		if err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "account.update":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token     string  `json:"token"`
			ID        uint    `json:"id"`
			FirstName *string `json:"first_name"`
			LastName  *string `json:"last_name"`
			Email     *string `json:"email"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.writes.UpdateAccount(ctx, p.ID, application.UpdateAccountInput{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "account.delete":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    uint   `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.writes.DeleteAccount(ctx, p.ID); err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "profile.create":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token       string `json:"token"`
			AccountID   uint   `json:"account_id"`
			Description string `json:"description"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.writes.CreateProfile(ctx, application.CreateProfileInput{
			AccountID:   p.AccountID,
			Description: p.Description,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "profile.get":
		var p struct {
			Token     string `json:"token"`
			AccountID uint   `json:"account_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.reads.GetProfileByAccountID(ctx, p.AccountID)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "profile.update":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token       string  `json:"token"`
			AccountID   uint    `json:"account_id"`
			Description *string `json:"description"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.writes.UpdateProfileByAccountID(ctx, p.AccountID, application.UpdateProfileInput{
			Description: p.Description,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "profile.delete":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token     string `json:"token"`
			AccountID uint   `json:"account_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.writes.DeleteProfileByAccountID(ctx, p.AccountID); err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "content.create":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token     string   `json:"token"`
			AccountID uint     `json:"account_id"`
			Title     string   `json:"title"`
			Body      string   `json:"body"`
			Status    string   `json:"status"`
			TagNames  []string `json:"tag_names"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.writes.CreateContentWithTags(ctx, application.CreateContentInput{
			AccountID: p.AccountID,
			Title:     p.Title,
			Body:      p.Body,
			Status:    p.Status,
			TagNames:  p.TagNames,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "content.get":
		var p struct {
			Token string `json:"token"`
			ID    uint   `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.reads.GetContentByID(ctx, p.ID)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "content.list":
		var p struct {
			Token    string `json:"token"`
			Scope    string `json:"scope"`
			Page     int    `json:"page"`
			PageSize int    `json:"page_size"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if p.Page == 0 {
			p.Page = 1
		}
		if p.PageSize == 0 {
			p.PageSize = 10
		}
		out, err := s.reads.ListContent(ctx, p.Scope, p.Page, p.PageSize)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "content.update":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token  string  `json:"token"`
			ID     uint    `json:"id"`
			Title  *string `json:"title"`
			Body   *string `json:"body"`
			Status *string `json:"status"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.writes.UpdateContent(ctx, p.ID, application.UpdateContentInput{
			Title:  p.Title,
			Body:   p.Body,
			Status: p.Status,
		})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "content.delete":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    uint   `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.writes.DeleteContent(ctx, p.ID); err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "content.tag.add":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token     string `json:"token"`
			ContentID uint   `json:"content_id"`
			TagID     uint   `json:"tag_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.writes.AddTagToContent(ctx, p.ContentID, p.TagID); err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "content.tag.remove":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token     string `json:"token"`
			ContentID uint   `json:"content_id"`
			TagID     uint   `json:"tag_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.writes.RemoveTagFromContent(ctx, p.ContentID, p.TagID); err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	case "tag.create":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			Name  string `json:"name"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.writes.CreateTag(ctx, application.CreateTagInput{Name: p.Name})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "tag.get":
		var p struct {
			Token string `json:"token"`
			ID    uint   `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.reads.GetTagByID(ctx, p.ID)
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "tag.list":
		var p struct {
			Token string `json:"token"`
			Q     string `json:"q"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.reads.ListTags(ctx, p.Q, 500)
		if err != nil {
			return internalError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "tag.update":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token string  `json:"token"`
			ID    uint    `json:"id"`
			Name  *string `json:"name"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.writes.UpdateTag(ctx, p.ID, application.UpdateTagInput{Name: p.Name})
		if err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: out, ID: req.ID}
	case "tag.delete":
		if rpcResp, ok := s.authorized(req); !ok {
			return rpcResp
		}
		var p struct {
			Token string `json:"token"`
			ID    uint   `json:"id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.writes.DeleteTag(ctx, p.ID); err != nil {
			return appError(req.ID, err)
		}
		return response{JSONRPC: "2.0", Result: map[string]any{"ok": true}, ID: req.ID}
	default:
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32601, Message: "method not found"}, ID: req.ID}
	}
}

func (s *Server) authorized(req request) (response, bool) {
	if s.token == "" {
		return response{}, true
	}
	var p struct {
		Token string `json:"token"`
	}
	if !decodeParams(req.Params, &p) {
		return invalidParams(req.ID), false
	}
	if subtle.ConstantTimeCompare([]byte(p.Token), []byte(s.token)) != 1 {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40100, Message: "unauthorized"}, ID: req.ID}, false
	}
	return response{}, true
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func invalidParams(id any) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: -32602, Message: "invalid params"}, ID: id}
}

func appError(id any, err error) response {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40400, Message: err.Error()}, ID: id}
	}
	var validation *domain.ValidationError
	var scope *domain.InvalidScopeError
	if errors.As(err, &validation) || errors.As(err, &scope) {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: 40000, Message: err.Error()}, ID: id}
	}
	return internalError(id, err)
}

func internalError(id any, err error) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: 50000, Message: fmt.Sprintf("internal error: %v", err)}, ID: id}
}
