package dto

// ClientUpsertRequest registers or updates an OAuth2 client.
type ClientUpsertRequest struct {
	ClientID     string   `json:"client_id" binding:"required"`
	Secret       string   `json:"client_secret" binding:"required"`
	Name         string   `json:"name" binding:"required"`
	RedirectURIs []string `json:"redirect_uris" binding:"required,min=1"`
}

// ClientResponse is the admin view of a registered client. The stored
// secret is never echoed back.
type ClientResponse struct {
	ClientID     string   `json:"client_id"`
	Name         string   `json:"name"`
	RedirectURIs []string `json:"redirect_uris"`
	CreatedBy    string   `json:"created_by,omitempty"`
}
