package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-service/models"
	"catalog-service/repository"

	"go.uber.org/zap"
)

// SliderInput is the editable part of a homepage slider.
type SliderInput struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=1000"`
	ImageURL        string `json:"image_url" validate:"required,url"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	CTAText         string `json:"cta_text" validate:"max=100"`
	CTALink         string `json:"cta_link"`
	Order           int    `json:"order" validate:"gte=0,lte=1000"`
	Active          bool   `json:"active"`
	LottieAnimation string `json:"lottie_animation"`
}

type SliderService struct {
	sliders repository.SliderRepo
	now     func() time.Time
}

func NewSliderService(sliders repository.SliderRepo) *SliderService {
	return &SliderService{sliders: sliders, now: func() time.Time { return time.Now().UTC() }}
}

// ListActiveSliders returns active sliders by ascending order.
func (s *SliderService) ListActiveSliders(ctx context.Context) ([]*models.Slider, error) {
	return s.sliders.FindAll(ctx, true)
}

func (s *SliderService) ListSliders(ctx context.Context) ([]*models.Slider, error) {
	return s.sliders.FindAll(ctx, false)
}

func (s *SliderService) GetSlider(ctx context.Context, id string) (*models.Slider, error) {
	slider, err := s.sliders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSliderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find slider: %w", err)
	}
	return slider, nil
}

func (s *SliderService) CreateSlider(ctx context.Context, in SliderInput) (*models.Slider, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Errors: []string{"Slider title is required"}}
	}
	now := s.now()
	slider := applySliderInput(&models.Slider{CreatedAt: now}, in)
	slider.UpdatedAt = now
	if _, err := s.sliders.Create(ctx, slider); err != nil {
		return nil, fmt.Errorf("create slider: %w", err)
	}
	zap.L().Info("slider created", zap.String("id", slider.ID))
	return slider, nil
}

// UpdateSlider replaces every editable field of the slider.
func (s *SliderService) UpdateSlider(ctx context.Context, id string, in SliderInput) (*models.Slider, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &ValidationError{Errors: []string{"Slider title is required"}}
	}
	slider, err := s.GetSlider(ctx, id)
	if err != nil {
		return nil, err
	}
	slider = applySliderInput(slider, in)
	slider.UpdatedAt = s.now()

	doc, err := repository.ToDocument(slider)
	if err != nil {
		return nil, err
	}
	delete(doc, "id")
	delete(doc, "created_at")
	if err := s.sliders.Update(ctx, id, doc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSliderNotFound
		}
		return nil, fmt.Errorf("update slider: %w", err)
	}
	return slider, nil
}

func (s *SliderService) DeleteSlider(ctx context.Context, id string) error {
	if err := s.sliders.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSliderNotFound
		}
		return fmt.Errorf("delete slider: %w", err)
	}
	return nil
}

func applySliderInput(slider *models.Slider, in SliderInput) *models.Slider {
	slider.Title = strings.TrimSpace(in.Title)
	slider.Description = in.Description
	slider.ImageURL = in.ImageURL
	slider.VideoURL = in.VideoURL
	slider.CTAText = in.CTAText
	slider.CTALink = in.CTALink
	slider.Order = in.Order
	slider.Active = in.Active
	slider.LottieAnimation = in.LottieAnimation
	return slider
}
