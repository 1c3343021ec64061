/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	imageTokenTTL    = time.Hour
	imageTokenIssuer = "hyoe"
)

type imageClaims struct {
	jwt.RegisteredClaims
	PatientID uuid.UUID `json:"pid"`
}

// ImageSigner issues and verifies the short-lived tokens embedded in image
// URLs.
type ImageSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewImageSigner returns a signer using secret for HS256.
func NewImageSigner(secret string) (*ImageSigner, error) {
	if len(secret) == 0 {
		return nil, errImageTokenSecret
	}

	return &ImageSigner{secret: []byte(secret), ttl: imageTokenTTL, now: time.Now}, nil
}

// Sign returns a token granting access to one image of one patient.
func (s *ImageSigner) Sign(patientID, imageID uuid.UUID) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, imageClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    imageTokenIssuer,
			Subject:   imageID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		PatientID: patientID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign image token: %w", err)
	}

	return signed, nil
}

// Verify checks a token and returns the patient and image it grants.
func (s *ImageSigner) Verify(raw string) (uuid.UUID, uuid.UUID, error) {
	claims := &imageClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(imageTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: %w", errInvalidImageToken, err)
	}

	imageID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, errInvalidImageToken
	}

	return claims.PatientID, imageID, nil
}
