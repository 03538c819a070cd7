// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package validation

import (
	"strings"
	"testing"
)

type clusterParams struct {
	TargetClusters int    `validate:"required,min=1"`
	Linkage        string `validate:"omitempty,linkage"`
}

type heuristicParams struct {
	SeasonCodes []string `validate:"required,len=2,dive,season_code"`
}

func TestValidateLinkage(t *testing.T) {
	tests := []struct {
		name    string
		params  clusterParams
		wantErr bool
	}{
		{"complete linkage is valid", clusterParams{TargetClusters: 5, Linkage: "complete"}, false},
		{"average linkage is valid", clusterParams{TargetClusters: 5, Linkage: "average"}, false},
		{"single linkage is valid", clusterParams{TargetClusters: 5, Linkage: "single"}, false},
		{"empty linkage allowed via omitempty", clusterParams{TargetClusters: 5}, false},
		{"ward linkage is not supported", clusterParams{TargetClusters: 5, Linkage: "ward"}, true},
		{"zero clusters rejected", clusterParams{TargetClusters: 0, Linkage: "complete"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSeasonCode(t *testing.T) {
	tests := []struct {
		name    string
		codes   []string
		wantErr bool
	}{
		{"two valid codes", []string{"SS1", "SS2"}, false},
		{"year-style codes", []string{"SS24", "FW24"}, false},
		{"lowercase rejected", []string{"ss1", "SS2"}, true},
		{"one code rejected by len", []string{"SS1"}, true},
		{"three codes rejected by len", []string{"SS1", "SS2", "FW1"}, true},
		{"empty code rejected", []string{"SS1", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&heuristicParams{SeasonCodes: tt.codes})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	err := ValidateStruct(&clusterParams{TargetClusters: 0, Linkage: "ward"})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors()))
	}

	msg := err.Error()
	if !strings.Contains(msg, "TargetClusters") {
		t.Errorf("combined message should name TargetClusters, got %q", msg)
	}
	if !strings.Contains(msg, "complete, average, single") {
		t.Errorf("linkage message should list supported linkages, got %q", msg)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}
