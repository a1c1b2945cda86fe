package models

import "time"

// Slider is one homepage carousel entry. Only active sliders are served publicly.
type Slider struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image_url"`
	VideoURL        string    `json:"video_url"`
	CTAText         string    `json:"cta_text"`
	CTALink         string    `json:"cta_link"`
	Order           int       `json:"order"`
	Active          bool      `json:"active"`
	LottieAnimation string    `json:"lottie_animation"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
