package googlebooks

// volumesResponse is the wire shape of the volumes search endpoint.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

// volume is a single catalog entry on the wire.
type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	ImageLinks  *struct {
		SmallThumbnail string `json:"smallThumbnail"`
		Thumbnail      string `json:"thumbnail"`
	} `json:"imageLinks"`
}

// Volume is a normalized catalog search result.
type Volume struct {
	// GoogleBookID is the catalog's volume identifier.
	GoogleBookID string `json:"googleBookId"`

	// Title is the volume title.
	Title string `json:"title"`

	// Author is the joined author list.
	Author string `json:"author"`

	// Description is the volume description, possibly empty.
	Description string `json:"description,omitempty"`

	// CoverURL is the thumbnail image URL, possibly empty.
	CoverURL string `json:"coverUrl,omitempty"`
}
