// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fixture

import (
	"encoding/json"
	"net/http"

	"github.com/zeebo/errs"
)

// Error is default error class for fixture package.
var Error = errs.Class("fixture")

func sendJSONError(w http.ResponseWriter, errMsg, detail string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  errMsg,
		"detail": detail,
	}) // nothing to do with the error response, probably the client requesting disappeared
}

func sendJSONData(w http.ResponseWriter, statusCode int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_, _ = w.Write(data) // nothing to do with the error response, probably the client requesting disappeared
}
