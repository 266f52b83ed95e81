package dto

type SearchQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type GameDocument struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	CoverImage       string   `json:"cover_image"`
	Developer        string   `json:"developer"`
	Genres           []string `json:"genres"`
	Tags             []string `json:"tags"`
	Platforms        []string `json:"platforms"`
	DownloadCount    int64    `json:"download_count"`
	CreatedAt        int64    `json:"created_at"`
}

type PostDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content"`
	PostType    string `json:"post_type"`
	Author      string `json:"author"`
	GameTitle   string `json:"game_title,omitempty"`
	PublishedAt int64  `json:"published_at"`
}

type SearchResult struct {
	Query      string         `json:"query"`
	Games      []GameDocument `json:"games"`
	Posts      []PostDocument `json:"posts"`
	TotalGames int64          `json:"total_games"`
	TotalPosts int64          `json:"total_posts"`
}
