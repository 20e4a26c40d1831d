package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finshield/finshield-backend/internal/domain"
	"github.com/finshield/finshield-backend/internal/usecase/reallocation"
)

func (s *Server) handleGetBalance(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}

	bal, err := s.balance.ComputeBalance(c.Request.Context(), userID, nil)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBalanceResponse(bal))
}

func (s *Server) handleGetShield(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}

	st, err := s.shield.ComputeStatus(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newShieldResponse(st))
}

func (s *Server) handleCheckFeatureAccess(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}

	access, err := s.shield.CheckFeatureAccess(c.Request.Context(), userID, c.Param("feature"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, featureAccessResponse{
		Feature:         access.Feature,
		Allowed:         access.Allowed,
		Status:          string(access.Status),
		ProgressPct:     access.ProgressPct,
		CoreProgressPct: access.CoreProgressPct,
		Reason:          access.Reason,
	})
}

type contributionRequest struct {
	FundID uuid.UUID `json:"fund_id" binding:"required"`
	Amount int64     `json:"amount" binding:"required"`
}

func (s *Server) handleContribute(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}

	var req contributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := s.reallocation.Contribute(c.Request.Context(), userID, req.FundID, decimal.NewFromInt(req.Amount))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"goal":        newGoalResponse(result.Goal),
		"transaction": newTransactionResponse(result.Transaction),
	})
}

type emergencyReallocationRequest struct {
	FromFundID uuid.UUID `json:"from_fund_id" binding:"required"`
	ToFundID   uuid.UUID `json:"to_fund_id" binding:"required"`
	Amount     int64     `json:"amount" binding:"required"`
}

func (s *Server) handleReallocateEmergency(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}

	var req emergencyReallocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := s.reallocation.ReallocateWithinEmergency(
		c.Request.Context(), userID, req.FromFundID, req.ToFundID, decimal.NewFromInt(req.Amount))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from": newGoalResponse(result.From),
		"to":   newGoalResponse(result.To),
	})
}

type surplusReallocationRequest struct {
	FromFundID uuid.UUID `json:"from_fund_id" binding:"required"`
	TargetID   uuid.UUID `json:"target_id" binding:"required"`
	TargetType string    `json:"target_type" binding:"required"`
	Amount     int64     `json:"amount" binding:"required"`
}

func (s *Server) handleReallocateSurplus(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}

	var req surplusReallocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := s.reallocation.ReallocateSurplus(
		c.Request.Context(), userID, req.FromFundID, req.TargetID,
		decimal.NewFromInt(req.Amount), reallocation.TargetType(req.TargetType))
	if err != nil {
		s.respondError(c, err)
		return
	}

	body := gin.H{"from": newGoalResponse(result.From)}
	if result.ToGoal != nil {
		body["to_goal"] = newGoalResponse(result.ToGoal)
	}
	if result.Loan != nil {
		body["loan"] = newLoanResponse(result.Loan)
		body["loan_closed"] = result.LoanClosed
	}
	if result.Transaction != nil {
		body["transaction"] = newTransactionResponse(result.Transaction)
	}
	c.JSON(http.StatusOK, body)
}

type createEmergencyFundRequest struct {
	Type         string `json:"type" binding:"required"`
	TargetAmount *int64 `json:"target_amount"`
}

func (s *Server) handleCreateEmergencyFund(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}

	var req createEmergencyFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	var target *decimal.Decimal
	if req.TargetAmount != nil {
		t := decimal.NewFromInt(*req.TargetAmount)
		target = &t
	}

	goal, err := s.reallocation.CreateEmergencyFund(
		c.Request.Context(), userID, domain.EmergencyType(req.Type), target)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newGoalResponse(goal))
}

func (s *Server) handleDeletionCheck(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}
	fundID, ok := s.pathUUID(c, "fundID")
	if !ok {
		return
	}

	check, err := s.reallocation.CanDeleteEmergencyFund(c.Request.Context(), userID, fundID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed":          check.Allowed,
		"shield_after":     check.ShieldAfter.IntPart(),
		"emergency_target": check.EmergencyTarget.IntPart(),
		"reason":           check.Reason,
	})
}

func (s *Server) handleSurplusRecommendations(c *gin.Context) {
	userID, ok := s.pathUUID(c, "userID")
	if !ok {
		return
	}

	recs, err := s.surplus.Recommend(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]recommendationResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, newRecommendationResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": out})
}

func (s *Server) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
