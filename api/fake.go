package api

import (
	"context"

	"nativo/quota"
)

// Fake is a scripted backend for session tests. Each field holds the
// next canned response; Calls records what was submitted.
type Fake struct {
	TextResult  *Result
	AudioResult *Result
	ImageResult *Result
	Err         error

	Quota    quota.Snapshot
	QuotaErr error

	Purchase    *PurchaseResult
	PurchaseErr error

	Calls struct {
		Text     []TextRequest
		Audio    []AudioRequest
		Image    []ImageRequest
		Quota    int
		BuyPlans []string
	}
}

func (f *Fake) TranslateText(_ context.Context, req TextRequest) (*Result, error) {
	f.Calls.Text = append(f.Calls.Text, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.TextResult, nil
}

func (f *Fake) UploadAudio(_ context.Context, req AudioRequest) (*Result, error) {
	f.Calls.Audio = append(f.Calls.Audio, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.AudioResult, nil
}

func (f *Fake) TranslateImage(_ context.Context, req ImageRequest) (*Result, error) {
	f.Calls.Image = append(f.Calls.Image, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ImageResult, nil
}

func (f *Fake) FetchQuota(context.Context) (quota.Snapshot, error) {
	f.Calls.Quota++
	if f.QuotaErr != nil {
		return quota.Snapshot{}, f.QuotaErr
	}
	return f.Quota, nil
}

func (f *Fake) BuyPack(_ context.Context, plan string) (*PurchaseResult, error) {
	f.Calls.BuyPlans = append(f.Calls.BuyPlans, plan)
	if f.PurchaseErr != nil {
		return nil, f.PurchaseErr
	}
	return f.Purchase, nil
}
