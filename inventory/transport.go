// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/xmidt-org/marionette/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Request and Response Headers
const (
	XmidtErrorHeaderKey = "X-Midt-Error"
)

// Resource document formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	formatParamKey   = "format"
	jsonContentType  = "application/json"
	yamlContentType  = "application/yaml"
	invalidFormatMsg = "Invalid format. Expecting one of json, yaml."
	nodeNameKey      = "nodename"
	nodeHostnameKey  = "hostname"
	nodeUsernameKey  = "username"
)

// ErrCasting indicates there was a middleware wiring mistake with the go-kit style
// encoders.
var ErrCasting = errors.New("casting error due to middleware wiring mistake")

// BadRequestErr is returned for malformed node-set requests.
type BadRequestErr struct {
	Message string
}

func (bre BadRequestErr) Error() string {
	return bre.Message
}

func (bre BadRequestErr) StatusCode() int {
	return http.StatusBadRequest
}

// Handler serves node-set requests.
type Handler http.Handler

type getNodesRequest struct {
	format string
}

type getNodesResponse struct {
	nodes  *model.NodeSet
	format string
}

func newGetNodesHandler(g NodeGetter, logger *zap.Logger) Handler {
	return kithttp.NewServer(
		newGetNodesEndpoint(g),
		decodeGetNodesRequest,
		encodeGetNodesResponse,
		kithttp.ServerBefore(setLogger(logger)),
		kithttp.ServerErrorEncoder(encodeError),
	)
}

// setLogger places a request scoped logger in the context.
func setLogger(logger *zap.Logger) kithttp.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		return sallust.With(ctx, logger.With(
			zap.String("requestURL", r.URL.EscapedPath()),
			zap.String("method", r.Method),
		))
	}
}

func decodeGetNodesRequest(_ context.Context, r *http.Request) (interface{}, error) {
	format := strings.ToLower(r.URL.Query().Get(formatParamKey))
	switch format {
	case FormatJSON, FormatYAML:
	case "":
		format = formatFromAccept(r.Header.Get("Accept"))
	default:
		return nil, BadRequestErr{Message: invalidFormatMsg}
	}
	return &getNodesRequest{format: format}, nil
}

func formatFromAccept(accept string) string {
	for _, mediaType := range strings.Split(accept, ",") {
		mediaType = strings.TrimSpace(strings.SplitN(mediaType, ";", 2)[0])
		switch mediaType {
		case yamlContentType, "application/x-yaml", "text/yaml":
			return FormatYAML
		case jsonContentType:
			return FormatJSON
		}
	}
	return FormatJSON
}

// resourceDocument renders nodes keyed by name. The identity keys always
// reflect the node itself even if a fact with the same name was merged.
func resourceDocument(ns *model.NodeSet) map[string]map[string]string {
	doc := make(map[string]map[string]string, ns.Len())
	for _, n := range ns.Nodes() {
		entry := make(map[string]string, len(n.Attributes)+3)
		for k, v := range n.Attributes {
			entry[k] = v
		}
		entry[nodeNameKey] = n.Name
		entry[nodeHostnameKey] = n.Hostname
		entry[nodeUsernameKey] = n.Username
		doc[n.Name] = entry
	}
	return doc
}

func encodeGetNodesResponse(ctx context.Context, rw http.ResponseWriter, response interface{}) error {
	r, ok := response.(*getNodesResponse)
	if !ok {
		return ErrCasting
	}

	var (
		data        []byte
		err         error
		contentType = jsonContentType
	)
	doc := resourceDocument(r.nodes)
	if r.format == FormatYAML {
		contentType = yamlContentType
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return err
	}

	rw.Header().Add("Content-Type", contentType)
	if _, err := rw.Write(data); err != nil {
		// the status line is already sent, so the error can only be logged
		sallust.Get(ctx).Error("Failed to write node-set response", zap.Error(err), zap.Int("size", len(data)))
	}
	return nil
}

func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set(XmidtErrorHeaderKey, err.Error())
	if headerer, ok := err.(kithttp.Headerer); ok {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}
	code := http.StatusInternalServerError
	var sc kithttp.StatusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
	}
	sallust.Get(ctx).Error("Failed to serve node-set request", zap.Error(err), zap.Int("code", code))
	w.WriteHeader(code)
}
