package models

// WindowRequest selects which collection to read. An empty collection
// falls back to the configured default.
type WindowRequest struct {
	Collection string `query:"collection" json:"collection" validate:"omitempty,alphanum,max=64"`
}

// RefreshRequest drops the memoized windows before re-reading.
type RefreshRequest struct {
	Collection string `query:"collection" json:"collection" validate:"omitempty,alphanum,max=64"`
}

// DeviceInfo mirrors the static status cards on the dashboard.
type DeviceInfo struct {
	Active        bool    `json:"active"`
	CurrentPowerV float64 `json:"current_power_v"`
	GeneratedWh   float64 `json:"generated_wh"`
}

// AboutInfo describes the service.
type AboutInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// UploadResult reports a stored upload.
type UploadResult struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}
