package model // import "github.com/jemtv/storyfeed/internal/model"

// Page is one response of the archive listing endpoint.
type Page struct {
	Data []*Story `json:"data"`
	Meta PageMeta `json:"meta"`
}

// PageMeta carries the listing pagination counters.
type PageMeta struct {
	TotalPages int `json:"total_pages"`
}
