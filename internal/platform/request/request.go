// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/autocare/internal/platform/apperr"
	"github.com/taibuivan/autocare/internal/platform/ctxutil"
	"github.com/taibuivan/autocare/internal/platform/validate"
)

// maxBodyBytes bounds every JSON body the gateway accepts.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes)).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredUserID returns the ID of the session user admitted by RequireSession.

Returns:
  - string: User ID
  - error: apperr.AuthRequired if the request reached the handler without a session
*/
func RequiredUserID(request *http.Request) (string, error) {

	userID := ctxutil.GetUserID(request.Context())

	if userID == "" {
		return "", apperr.AuthRequired(apperr.MsgAuthRequired)
	}

	return userID, nil
}
