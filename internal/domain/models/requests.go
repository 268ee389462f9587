package models

// Requests for the query and configuration HTTP endpoints. Defined in domain
// for consistency and reuse.

type AlertsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type SubscriberRequest struct {
	ID string `param:"id" json:"id" validate:"required"`
}

type ToggleAlertRequest struct {
	ID   string `param:"id" json:"id" validate:"required"`
	Kind string `param:"kind" json:"kind" validate:"required"`
}

type ToggleRegimeRequest struct {
	ID     string `param:"id" json:"id" validate:"required"`
	Regime string `param:"regime" json:"regime" validate:"required"`
}
