////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/thedevsaddam/gojsonq"
	"go.uber.org/ratelimit"
)

// Backend method names as they appear on the wire.
const (
	methodGetUserConversations   = "getUserConversations"
	methodCreateConversation     = "createConversation"
	methodGetMessages            = "getMessages"
	methodSendMessage            = "sendMessage"
	methodGetUserProfile         = "getUserProfile"
	methodGetCallerUserProfile   = "getCallerUserProfile"
	methodSaveCallerUserProfile  = "saveCallerUserProfile"
	methodGetMatchingContacts    = "getMatchingContacts"
	methodCheckPhoneAvailability = "checkPhoneNumberAvailability"
	methodUploadBlob             = "uploadBlob"
)

const (
	requestIDHeader = "X-Request-Id"

	// Upper bound on a response body read into memory
	maxResponseSize = 32 << 20
)

// HTTPParams configures an HTTPClient.
type HTTPParams struct {
	// BaseURL is the root of the backend, e.g. "https://chat.example.com".
	BaseURL string

	// Token is sent as a bearer token on every request. Empty means the
	// client calls as the anonymous identity.
	Token string

	// Timeout bounds every single HTTP request.
	Timeout time.Duration

	// UploadChunkSize is the number of bytes sent per blob upload request.
	UploadChunkSize int

	// MaxUploadThroughput caps blob uploads in bytes per second.
	MaxUploadThroughput int
}

// DefaultHTTPParams returns the default HTTPParams for the base URL.
func DefaultHTTPParams(baseURL string) HTTPParams {
	return HTTPParams{
		BaseURL:             baseURL,
		Timeout:             30 * time.Second,
		UploadChunkSize:     256 << 10,
		MaxUploadThroughput: 4 << 20,
	}
}

// HTTPClient calls the backend over HTTP with JSON-encoded arguments. Every
// method is a POST to {base}/call/{method}; the response envelope holds either
// the result under "ok" or a rejection under "err".
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	params     HTTPParams
}

// NewHTTPClient validates the parameters and returns a client.
func NewHTTPClient(params HTTPParams) (*HTTPClient, error) {
	if params.BaseURL == "" {
		return nil, errors.New("remote: base URL is required")
	}
	if _, err := url.Parse(params.BaseURL); err != nil {
		return nil, errors.Wrapf(err, "remote: invalid base URL %q",
			params.BaseURL)
	}
	if params.UploadChunkSize <= 0 {
		return nil, errors.Errorf("remote: upload chunk size must be "+
			"positive, got %d", params.UploadChunkSize)
	}

	return &HTTPClient{
		baseURL:    strings.TrimRight(params.BaseURL, "/"),
		token:      params.Token,
		httpClient: &http.Client{Timeout: params.Timeout},
		params:     params,
	}, nil
}

// GetUserConversations returns the caller's conversation ids.
func (c *HTTPClient) GetUserConversations(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.call(ctx, methodGetUserConversations, struct{}{}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// CreateConversation creates a conversation with the participants.
func (c *HTTPClient) CreateConversation(
	ctx context.Context, participants []Identity) (string, error) {
	args := struct {
		Participants []Identity `json:"participants"`
	}{participants}

	var conversationID string
	if err := c.call(ctx, methodCreateConversation, args, &conversationID); err != nil {
		return "", err
	}
	return conversationID, nil
}

// GetMessages returns the conversation's messages in backend order.
func (c *HTTPClient) GetMessages(
	ctx context.Context, conversationID string) ([]Message, error) {
	args := struct {
		ConversationID string `json:"conversationId"`
	}{conversationID}

	var msgs []Message
	if err := c.call(ctx, methodGetMessages, args, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage uploads any local attachment blobs, one after the other, and
// then sends the message.
func (c *HTTPClient) SendMessage(
	ctx context.Context, conversationID string, msg Message) error {
	err := uploadLocalBlobs(msg.Attachments, func(b *Blob) error {
		return c.upload(ctx, b)
	})
	if err != nil {
		return err
	}

	args := struct {
		ConversationID string  `json:"conversationId"`
		Message        Message `json:"message"`
	}{conversationID, msg}
	return c.call(ctx, methodSendMessage, args, nil)
}

// GetUserProfile returns the profile of the user or nil.
func (c *HTTPClient) GetUserProfile(
	ctx context.Context, user Identity) (*UserProfile, error) {
	args := struct {
		User Identity `json:"user"`
	}{user}

	var profile *UserProfile
	if err := c.call(ctx, methodGetUserProfile, args, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetCallerUserProfile returns the caller's profile or nil.
func (c *HTTPClient) GetCallerUserProfile(ctx context.Context) (*UserProfile, error) {
	var profile *UserProfile
	if err := c.call(ctx, methodGetCallerUserProfile, struct{}{}, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SaveCallerUserProfile uploads a local profile picture, if any, and saves the
// profile.
func (c *HTTPClient) SaveCallerUserProfile(
	ctx context.Context, profile UserProfile) error {
	if profile.ProfilePicture != nil && profile.ProfilePicture.NeedsUpload() {
		if err := c.upload(ctx, profile.ProfilePicture); err != nil {
			return errors.WithMessage(err, "failed to upload profile picture")
		}
	}

	args := struct {
		Profile UserProfile `json:"profile"`
	}{profile}
	return c.call(ctx, methodSaveCallerUserProfile, args, nil)
}

// GetMatchingContacts returns the profiles registered under the numbers.
func (c *HTTPClient) GetMatchingContacts(
	ctx context.Context, phoneNumbers []string) ([]UserProfile, error) {
	args := struct {
		PhoneNumbers []string `json:"phoneNumbers"`
	}{phoneNumbers}

	var profiles []UserProfile
	if err := c.call(ctx, methodGetMatchingContacts, args, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// CheckPhoneNumberAvailability reports whether the number is unregistered.
func (c *HTTPClient) CheckPhoneNumberAvailability(
	ctx context.Context, phoneNumber string) (bool, error) {
	args := struct {
		PhoneNumber string `json:"phoneNumber"`
	}{phoneNumber}

	var available bool
	if err := c.call(ctx, methodCheckPhoneAvailability, args, &available); err != nil {
		return false, err
	}
	return available, nil
}

// envelope is the response body of every call.
type envelope struct {
	Ok  json.RawMessage `json:"ok"`
	Err *struct {
		Message string `json:"message"`
	} `json:"err"`
}

// call performs one backend method call and decodes the result into result,
// which may be nil for methods that return nothing.
func (c *HTTPClient) call(ctx context.Context, method string, args,
	result interface{}) error {
	encoded, err := json.Marshal(args)
	if err != nil {
		return errors.Wrapf(err, "remote: failed to encode %s arguments", method)
	}

	requestID := ulid.Make().String()
	body, status, err := c.do(ctx, http.MethodPost, "/call/"+method,
		"application/json", requestID, bytes.NewReader(encoded), "")
	if err != nil {
		return errors.WithMessagef(err, "remote: %s request %s", method,
			requestID)
	}

	if status < 200 || status >= 300 {
		return c.decodeFailure(method, status, body)
	}

	var env envelope
	if err = json.Unmarshal(body, &env); err != nil {
		return errors.Wrapf(err, "remote: malformed %s response", method)
	}
	if env.Err != nil {
		return newError(method, env.Err.Message, 0)
	}
	if result == nil || len(env.Ok) == 0 {
		return nil
	}
	if err = json.Unmarshal(env.Ok, result); err != nil {
		return errors.Wrapf(err, "remote: failed to decode %s result", method)
	}

	jww.TRACE.Printf("[REMOTE] %s request %s succeeded", method, requestID)
	return nil
}

// decodeFailure turns a non-2xx response into an *Error, pulling the message
// out of the envelope when the body is JSON.
func (c *HTTPClient) decodeFailure(method string, status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	if found, ok := gojsonq.New().FromString(string(body)).
		Find("err.message").(string); ok && found != "" {
		message = found
	} else if message == "" {
		message = http.StatusText(status)
	}

	jww.DEBUG.Printf("[REMOTE] %s rejected with %d: %s", method, status,
		message)
	return newError(method, message, status)
}

// upload sends the blob's bytes in chunks with PUT requests to
// {base}/blobs/{hash}, reporting progress after each chunk, and resolves the
// blob's direct URL once every chunk is accepted. Chunks are paced to
// MaxUploadThroughput.
func (c *HTTPClient) upload(ctx context.Context, b *Blob) error {
	data := b.Bytes()
	total := len(data)
	chunk := c.params.UploadChunkSize
	path := "/blobs/" + b.Hash()

	rate := 1
	if c.params.MaxUploadThroughput > chunk {
		rate = c.params.MaxUploadThroughput / chunk
	}
	rl := ratelimit.New(rate, ratelimit.WithoutSlack)

	b.ReportProgress(0)
	for start := 0; start < total || (total == 0 && start == 0); start += chunk {
		end := start + chunk
		if end > total {
			end = total
		}

		rl.Take()
		contentRange := fmt.Sprintf("bytes */%d", total)
		if end > start {
			contentRange = fmt.Sprintf("bytes %d-%d/%d", start, end-1, total)
		}
		body, status, err := c.do(ctx, http.MethodPut, path,
			"application/octet-stream", ulid.Make().String(),
			bytes.NewReader(data[start:end]), contentRange)
		if err != nil {
			return errors.WithMessagef(err, "remote: blob %s upload",
				b.Hash())
		}
		if status < 200 || status >= 300 {
			return c.decodeFailure(methodUploadBlob, status, body)
		}

		if total == 0 {
			break
		}
		b.ReportProgress(end * 100 / total)
	}

	b.Resolve(c.baseURL + path)
	b.ReportProgress(100)
	jww.DEBUG.Printf("[REMOTE] Uploaded blob %s (%d bytes)", b.Hash(), total)
	return nil
}

// do sends one HTTP request and returns the response body and status.
func (c *HTTPClient) do(ctx context.Context, method, path, contentType,
	requestID string, body io.Reader, contentRange string) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to create request")
	}

	request.Header.Set("Content-Type", contentType)
	request.Header.Set(requestIDHeader, requestID)
	if contentRange != "" {
		request.Header.Set("Content-Range", contentRange)
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "request to %s %s failed", method, path)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, response.StatusCode,
			errors.Wrap(err, "failed to read response body")
	}

	return responseBody, response.StatusCode, nil
}
