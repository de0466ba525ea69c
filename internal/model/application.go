package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ApplicationStatus enumerates the lifecycle states of an application.
// PENDING on submission, SCREENED once the screening engine has run,
// then terminal on ACCEPTED or REJECTED.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationReviewed ApplicationStatus = "REVIEWED"
	ApplicationScreened ApplicationStatus = "SCREENED"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// ResponseValue is a tagged union over the small set of field types an
// applicant may answer with.  Exactly one of the value fields is
// meaningful, selected by Type.  Values are serialized to JSON as
// {"type": "...", "value": ...} so the response map survives round
// trips through the responses JSON column without losing type
// information.
type ResponseValue struct {
	Type    FieldType
	Text    string
	Number  float64
	Bool    bool
	Choices []string // choice uses Choices[0]; multi_choice uses the full slice
}

// responseValueJSON is the wire form of a ResponseValue.
type responseValueJSON struct {
	Type  FieldType       `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the union as its tagged wire form.
func (v ResponseValue) MarshalJSON() ([]byte, error) {
	var raw any
	switch v.Type {
	case FieldText:
		raw = v.Text
	case FieldNumber:
		raw = v.Number
	case FieldBoolean:
		raw = v.Bool
	case FieldChoice:
		if len(v.Choices) > 0 {
			raw = v.Choices[0]
		} else {
			raw = ""
		}
	case FieldMultiChoice:
		raw = v.Choices
	default:
		return nil, fmt.Errorf("model: unknown field type %q", v.Type)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(responseValueJSON{Type: v.Type, Value: b})
}

// UnmarshalJSON decodes the tagged wire form back into the union.  An
// unknown type tag or a value of the wrong shape is an error so that
// malformed submissions are rejected at the boundary rather than
// surfacing later inside the screening engine.
func (v *ResponseValue) UnmarshalJSON(data []byte) error {
	var wire responseValueJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := ResponseValue{Type: wire.Type}
	switch wire.Type {
	case FieldText:
		if err := json.Unmarshal(wire.Value, &out.Text); err != nil {
			return fmt.Errorf("model: text value: %w", err)
		}
	case FieldNumber:
		if err := json.Unmarshal(wire.Value, &out.Number); err != nil {
			return fmt.Errorf("model: number value: %w", err)
		}
	case FieldBoolean:
		if err := json.Unmarshal(wire.Value, &out.Bool); err != nil {
			return fmt.Errorf("model: boolean value: %w", err)
		}
	case FieldChoice:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return fmt.Errorf("model: choice value: %w", err)
		}
		out.Choices = []string{s}
	case FieldMultiChoice:
		if err := json.Unmarshal(wire.Value, &out.Choices); err != nil {
			return fmt.Errorf("model: multi_choice value: %w", err)
		}
	default:
		return fmt.Errorf("model: unknown field type %q", wire.Type)
	}
	*v = out
	return nil
}

// Choice returns the single selected option of a choice field, or the
// empty string when none was recorded.
func (v ResponseValue) Choice() string {
	if len(v.Choices) > 0 {
		return v.Choices[0]
	}
	return ""
}

// Application is a candidate's response to a posting.  Responses is a
// map keyed by the field names declared in the posting's response
// schema.  Screening stores its latest result on the application;
// re-running screening overwrites it.
//
// Fields:
//  ID             – primary key identifier.
//  PostingID      – posting being applied to.
//  ApplicantName  – applicant display name.
//  ApplicantEmail – applicant contact address.
//  Responses      – typed answers keyed by schema field name.
//  Status         – application lifecycle state.
//  Screening      – latest screening result, nil until screened.
//  CreatedAt      – submission timestamp.
//  UpdatedAt      – last update timestamp.
type Application struct {
	ID             uint64                   // applications.id
	PostingID      uint64                   // applications.posting_id
	ApplicantName  string                   // applications.applicant_name
	ApplicantEmail string                   // applications.applicant_email
	Responses      map[string]ResponseValue // applications.responses (JSON column)
	Status         ApplicationStatus        // applications.status
	Screening      *ScreeningResult         // applications.screening (JSON column, nullable)
	CreatedAt      time.Time                // applications.created_at
	UpdatedAt      time.Time                // applications.updated_at
}
