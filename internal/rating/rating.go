// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package rating collects star ratings of the workshop from signed-in customers.
package rating

// Rating is one customer's verdict on the service.
type Rating struct {
	ID        string `json:"_id,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	UserID    string `json:"userId,omitempty"`
	UserName  string `json:"userName,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

const (
	FieldRating  = "rating"
	FieldComment = "comment"

	MinStars = 1
	MaxStars = 5

	// MaxCommentLength bounds the free-text comment.
	MaxCommentLength = 1000
)

const MsgLoginToRate = "Please login to submit a rating."
