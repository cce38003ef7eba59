package models

// Container is the content-item record comments attach to. Items published
// through the CMS carry a store-assigned numeric ID; items produced by the
// static build pipeline are addressed by Moniker until a container is
// auto-provisioned for them on first reference.
type Container struct {
	ID            int64  `json:"id" db:"id"`
	Moniker       string `json:"moniker,omitempty" db:"moniker"`
	AllowComments bool   `json:"allow_comments" db:"allow_comments"`
}
