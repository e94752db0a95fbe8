// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

/*
Package validation provides struct validation using go-playground/validator v10.

A single validator instance is created lazily and shared; it caches struct
metadata, so repeated validation of the same request type is cheap. Field
names in errors are taken from json tags.

Custom tags:

  - action: view, purchase, or the buy alias, in any case
  - identifier: 1-128 characters from [A-Za-z0-9_.:@-]
  - timestamp: RFC 3339, or a naive ISO 8601 date/time (read as UTC)

Errors convert to the API's VALIDATION_ERROR shape with ToAPIError:

	type ActivityRequest struct {
	    UserID string `json:"user_id" validate:"required,identifier"`
	    Action string `json:"action" validate:"required,action"`
	}

	if err := validation.ValidateStruct(&req); err != nil {
	    apiErr := err.ToAPIError()
	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
	    return
	}
*/
package validation
