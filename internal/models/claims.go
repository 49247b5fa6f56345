package models

import "github.com/golang-jwt/jwt/v5"

// Claims are carried by tokens that authorize write requests.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// ScopePredict allows creating predictions.
const ScopePredict = "predict"
