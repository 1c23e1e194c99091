package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func doAccountCreate(ctx context.Context, cfg cliConfig, firstName, lastName, email string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "account.create", map[string]any{"first_name": firstName, "last_name": lastName, "email": email}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/accounts", map[string]any{"first_name": firstName, "last_name": lastName, "email": email}, out)
}

func doAccountGet(ctx context.Context, cfg cliConfig, id uint, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "account.get", map[string]any{"id": id}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/accounts/"+uintToString(id), nil, out)
}

func doAccountsList(ctx context.Context, cfg cliConfig, q string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "account.list", map[string]any{"q": q}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/accounts"
	if q != "" {
		path += "?q=" + url.QueryEscape(q)
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doAccountUpdate(ctx context.Context, cfg cliConfig, id uint, firstName, lastName, email *string, out any) error {
	payload := map[string]any{}
	putMaybe(payload, "first_name", firstName)
	putMaybe(payload, "last_name", lastName)
	putMaybe(payload, "email", email)
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		payload["id"] = id
		return client.call(ctx, "account.update", payload, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPut, "/api/accounts/"+uintToString(id), payload, out)
}

func doAccountDelete(ctx context.Context, cfg cliConfig, id uint) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "account.delete", map[string]any{"id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/accounts/"+uintToString(id), nil, nil)
}

func doProfileCreate(ctx context.Context, cfg cliConfig, accountID uint, description string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "profile.create", map[string]any{"account_id": accountID, "description": description}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/profiles", map[string]any{"account_id": accountID, "description": description}, out)
}

func doProfileGet(ctx context.Context, cfg cliConfig, accountID uint, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "profile.get", map[string]any{"account_id": accountID}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/accounts/"+uintToString(accountID)+"/profile", nil, out)
}

func doProfileUpdate(ctx context.Context, cfg cliConfig, accountID uint, description *string, out any) error {
	payload := map[string]any{}
	putMaybe(payload, "description", description)
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		payload["account_id"] = accountID
		return client.call(ctx, "profile.update", payload, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPut, "/api/accounts/"+uintToString(accountID)+"/profile", payload, out)
}

func doProfileDelete(ctx context.Context, cfg cliConfig, accountID uint) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "profile.delete", map[string]any{"account_id": accountID}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/accounts/"+uintToString(accountID)+"/profile", nil, nil)
}

func doContentCreate(ctx context.Context, cfg cliConfig, accountID uint, title, body, status string, tagNames []string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "content.create", map[string]any{
			"account_id": accountID,
			"title":      title,
			"body":       body,
			"status":     status,
			"tag_names":  tagNames,
		}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/contents", map[string]any{
		"account_id": accountID,
		"title":      title,
		"body":       body,
		"status":     status,
		"tag_names":  tagNames,
	}, out)
}

func doContentGet(ctx context.Context, cfg cliConfig, id uint, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "content.get", map[string]any{"id": id}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/contents/"+uintToString(id), nil, out)
}

func doContentList(ctx context.Context, cfg cliConfig, scope string, page, pageSize int, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "content.list", map[string]any{"scope": scope, "page": page, "page_size": pageSize}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	params := url.Values{}
	if scope != "" {
		params.Set("scope", scope)
	}
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("page_size", fmt.Sprintf("%d", pageSize))
	return client.request(ctx, http.MethodGet, "/api/contents?"+params.Encode(), nil, out)
}

func doContentUpdate(ctx context.Context, cfg cliConfig, id uint, title, body, status *string, out any) error {
	payload := map[string]any{}
	putMaybe(payload, "title", title)
	putMaybe(payload, "body", body)
	putMaybe(payload, "status", status)
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		payload["id"] = id
		return client.call(ctx, "content.update", payload, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPut, "/api/contents/"+uintToString(id), payload, out)
}

func doContentDelete(ctx context.Context, cfg cliConfig, id uint) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "content.delete", map[string]any{"id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/contents/"+uintToString(id), nil, nil)
}

func doContentTagAdd(ctx context.Context, cfg cliConfig, contentID, tagID uint) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "content.tag.add", map[string]any{"content_id": contentID, "tag_id": tagID}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/contents/"+uintToString(contentID)+"/tags/"+uintToString(tagID), nil, nil)
}

func doContentTagRemove(ctx context.Context, cfg cliConfig, contentID, tagID uint) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "content.tag.remove", map[string]any{"content_id": contentID, "tag_id": tagID}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/contents/"+uintToString(contentID)+"/tags/"+uintToString(tagID), nil, nil)
}

func doTagCreate(ctx context.Context, cfg cliConfig, name string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "tag.create", map[string]any{"name": name}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPost, "/api/tags", map[string]any{"name": name}, out)
}

func doTagGet(ctx context.Context, cfg cliConfig, id uint, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "tag.get", map[string]any{"id": id}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodGet, "/api/tags/"+uintToString(id), nil, out)
}

func doTagsList(ctx context.Context, cfg cliConfig, q string, out any) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "tag.list", map[string]any{"q": q}, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	path := "/api/tags"
	if q != "" {
		path += "?q=" + url.QueryEscape(q)
	}
	return client.request(ctx, http.MethodGet, path, nil, out)
}

func doTagUpdate(ctx context.Context, cfg cliConfig, id uint, name *string, out any) error {
	payload := map[string]any{}
	putMaybe(payload, "name", name)
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		payload["id"] = id
		return client.call(ctx, "tag.update", payload, out)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodPut, "/api/tags/"+uintToString(id), payload, out)
}

func doTagDelete(ctx context.Context, cfg cliConfig, id uint) error {
	if cfg.Transport == "uds" {
		client := newRPCClient(cfg.Socket, cfg.Token)
		return client.call(ctx, "tag.delete", map[string]any{"id": id}, nil)
	}
	client := newAPIClient(cfg.Server, cfg.Token)
	return client.request(ctx, http.MethodDelete, "/api/tags/"+uintToString(id), nil, nil)
}

func putMaybe(payload map[string]any, key string, value *string) {
	if value != nil {
		payload[key] = *value
	}
}

func uintToString(v uint) string {
	return fmt.Sprintf("%d", v)
}
