package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tradepost/pkg/errors"
)

// KakaoPayService talks to the KakaoPay single-payment HTTP API.
type KakaoPayService struct {
	adminKey string
	cid      string
	baseURL  string
	client   *http.Client
}

func NewKakaoPayService(adminKey, cid, baseURL string) *KakaoPayService {
	if baseURL == "" {
		baseURL = "https://kapi.kakao.com"
	}

	return &KakaoPayService{
		adminKey: adminKey,
		cid:      cid,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type kakaoReadyResponse struct {
	Tid                   string `json:"tid"`
	NextRedirectPCURL     string `json:"next_redirect_pc_url"`
	NextRedirectMobileURL string `json:"next_redirect_mobile_url"`
	NextRedirectAppURL    string `json:"next_redirect_app_url"`
	CreatedAt             string `json:"created_at"`
}

type kakaoApproveResponse struct {
	Aid               string `json:"aid"`
	Tid               string `json:"tid"`
	PaymentMethodType string `json:"payment_method_type"`
	ApprovedAt        string `json:"approved_at"`
}

func (s *KakaoPayService) Ready(ctx context.Context, req PaymentReadyRequest) (*PaymentReadyResponse, error) {
	log.Printf("Preparing KakaoPay payment for order: %s, amount: %.0f", req.OrderID, req.Amount)

	form := url.Values{}
	form.Set("cid", s.cid)
	form.Set("partner_order_id", req.OrderID)
	form.Set("partner_user_id", req.UserID)
	form.Set("item_name", req.ItemName)
	form.Set("quantity", "1")
	form.Set("total_amount", strconv.Itoa(int(req.Amount)))
	form.Set("tax_free_amount", "0")
	form.Set("approval_url", req.ApprovalURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("fail_url", req.FailURL)

	body, err := s.post(ctx, "/v1/payment/ready", form)
	if err != nil {
		return nil, err
	}

	var readyResp kakaoReadyResponse
	if err := json.Unmarshal(body, &readyResp); err != nil {
		return nil, errors.Upstream("Failed to parse payment provider response", err)
	}

	if readyResp.Tid == "" {
		return nil, errors.Upstream("Payment provider response has no transaction token", nil)
	}

	log.Printf("KakaoPay payment prepared: order=%s tid=%s", req.OrderID, readyResp.Tid)

	return &PaymentReadyResponse{
		Tid:               readyResp.Tid,
		RedirectPCURL:     readyResp.NextRedirectPCURL,
		RedirectMobileURL: readyResp.NextRedirectMobileURL,
		RedirectAppURL:    readyResp.NextRedirectAppURL,
	}, nil
}

func (s *KakaoPayService) Approve(ctx context.Context, req PaymentApproveRequest) (*PaymentApproveResponse, error) {
	log.Printf("Approving KakaoPay payment for order: %s, tid: %s", req.OrderID, req.Tid)

	form := url.Values{}
	form.Set("cid", s.cid)
	form.Set("tid", req.Tid)
	form.Set("partner_order_id", req.OrderID)
	form.Set("partner_user_id", req.UserID)
	form.Set("pg_token", req.PgToken)

	body, err := s.post(ctx, "/v1/payment/approve", form)
	if err != nil {
		return nil, err
	}

	var approveResp kakaoApproveResponse
	if err := json.Unmarshal(body, &approveResp); err != nil {
		return nil, errors.Upstream("Failed to parse payment provider response", err)
	}

	if approveResp.Aid == "" {
		return nil, errors.Upstream("Payment provider rejected approval", nil)
	}

	approvedAt, err := time.Parse("2006-01-02T15:04:05", approveResp.ApprovedAt)
	if err != nil {
		approvedAt = time.Now()
	}

	log.Printf("KakaoPay payment approved: order=%s method=%s", req.OrderID, approveResp.PaymentMethodType)

	return &PaymentApproveResponse{
		Aid:               approveResp.Aid,
		Tid:               approveResp.Tid,
		PaymentMethodType: approveResp.PaymentMethodType,
		ApprovedAt:        approvedAt,
	}, nil
}

func (s *KakaoPayService) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Internal("Failed to create provider request", err)
	}

	httpReq.Header.Set("Authorization", "KakaoAK "+s.adminKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, errors.Upstream("Payment provider call failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Upstream("Failed to read payment provider response", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("KakaoPay API error: status=%d body=%s", resp.StatusCode, string(body))
		return nil, errors.Upstream(fmt.Sprintf("Payment provider returned status %d", resp.StatusCode), nil)
	}

	return body, nil
}
