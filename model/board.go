package model

// BoardSummary is a row of the board list.
type BoardSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Board is a board with its columns and their tasks.
type Board struct {
	ID      int       `json:"id"`
	OwnerID int       `json:"-"`
	Title   string    `json:"title"`
	Columns []*Column `json:"columns"`
}

type Column struct {
	ID          int     `json:"id"`
	BoardID     int     `json:"boardId"`
	Title       string  `json:"title"`
	OrderNumber int     `json:"orderNumber"`
	Tasks       []*Task `json:"tasks"`
}

type Task struct {
	ID          int    `json:"id"`
	ColumnID    int    `json:"col_id"`
	OrderNumber int    `json:"ord_num"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	BoardID     int    `json:"-"`
}
