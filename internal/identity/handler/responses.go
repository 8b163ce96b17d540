package handler

import (
	"time"

	"idverify/internal/identity/models"
	"idverify/pkg/domain/residentid"
)

// ErrInvalidIdentifier is the error string for a rejected identity number.
const ErrInvalidIdentifier = "invalid_identifier"

// RegionResponse is the administrative division of a valid number.
type RegionResponse struct {
	Province   string `json:"province"`
	Prefecture string `json:"prefecture"`
	County     string `json:"county"`
	Source     string `json:"source"`
	Known      bool   `json:"known"`
}

// VerifyResponse is returned for a valid number.
type VerifyResponse struct {
	Valid            bool           `json:"valid"`
	IDNumber         string         `json:"id_number"`
	RegionCode       string         `json:"region_code"`
	ProvinceCode     string         `json:"province_code"`
	Region           RegionResponse `json:"region"`
	BirthDate        string         `json:"birth_date"`
	BirthDateDisplay string         `json:"birth_date_display"`
	Age              int            `json:"age"`
	Sex              string         `json:"sex"`
	SexLabel         string         `json:"sex_label"`
}

// InvalidResponse is returned for a rejected number. Reason is only filled
// when the handler is configured to expose it.
type InvalidResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Reason           string `json:"reason,omitempty"`
}

// BatchItem is one entry of a batch response. Exactly one of the embedded
// pointers is set. Valid shadows VerifyResponse.Valid so rejected items
// carry it too.
type BatchItem struct {
	*VerifyResponse
	*InvalidResponse
	Input string `json:"input"`
	Valid bool   `json:"valid"`
}

// BatchVerifyResponse is the body returned by the batch endpoint.
type BatchVerifyResponse struct {
	Results []BatchItem `json:"results"`
	Valid   int         `json:"valid"`
	Invalid int         `json:"invalid"`
}

func toVerifyResponse(d *residentid.Decoded, now time.Time) *VerifyResponse {
	return &VerifyResponse{
		Valid:        true,
		IDNumber:     d.Number.String(),
		RegionCode:   d.RegionCode,
		ProvinceCode: d.ProvinceCode,
		Region: RegionResponse{
			Province:   d.Region.Province,
			Prefecture: d.Region.Prefecture,
			County:     d.Region.County,
			Source:     d.Region.Source,
			Known:      d.RegionKnown,
		},
		BirthDate:        d.BirthDate.String(),
		BirthDateDisplay: d.BirthDate.Display(),
		Age:              d.AgeAt(now),
		Sex:              d.Sex.String(),
		SexLabel:         d.Sex.Label(),
	}
}

func (h *Handler) toInvalidResponse(r models.Result) *InvalidResponse {
	resp := &InvalidResponse{
		Error:            ErrInvalidIdentifier,
		ErrorDescription: residentid.GenericMessage,
	}
	if h.exposeReasons {
		resp.Reason = r.Reason.String()
	}
	return resp
}

func (h *Handler) toBatchResponse(results []models.Result, now time.Time) BatchVerifyResponse {
	out := BatchVerifyResponse{Results: make([]BatchItem, len(results))}
	for i, r := range results {
		item := BatchItem{Input: r.Input, Valid: r.Valid}
		if r.Valid {
			item.VerifyResponse = toVerifyResponse(r.Decoded, now)
			out.Valid++
		} else {
			item.InvalidResponse = h.toInvalidResponse(r)
			out.Invalid++
		}
		out.Results[i] = item
	}
	return out
}
