// business/estimation/service.go
package estimation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fareRadar/domain"
	"fareRadar/pkg/config"
	"fareRadar/pkg/geo"
	"fareRadar/pkg/logger"
	"fareRadar/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ---- Collaborator interfaces ----

type RouteRepository interface {
	GetRoute(ctx context.Context, startLat, startLon, endLat, endLon float64) (*domain.RouteInfo, error)
}

type GeocodeRepository interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Place, error)
}

type WeatherRepository interface {
	CurrentWeatherCode(ctx context.Context, lat, lon float64) (int16, error)
}

type EstimationLogRepository interface {
	Save(ctx context.Context, entry *domain.EstimationLog) error
}

// Nudger applies the learned fare adjustment. Unknown weather/zone pass -1.
type Nudger interface {
	NudgeFactor(timeBucket string, weatherCode, zoneType int16) float64
}

// ---- Service ----

type Service struct {
	trips      TripRepository
	isochrones IsochroneRepository
	routes     RouteRepository
	geocoder   GeocodeRepository
	weather    WeatherRepository
	classifier ClassifierRepository
	logs       EstimationLogRepository
	nudger     Nudger
	tiers      *PriceTierTable
	cfg        config.EngineConfig
	loc        *time.Location
}

func NewService(
	trips TripRepository,
	isochrones IsochroneRepository,
	routes RouteRepository,
	geocoder GeocodeRepository,
	weather WeatherRepository,
	classifier ClassifierRepository,
	logs EstimationLogRepository,
	tiers *PriceTierTable,
	cfg config.EngineConfig,
	loc *time.Location,
) *Service {
	return &Service{
		trips:      trips,
		isochrones: isochrones,
		routes:     routes,
		geocoder:   geocoder,
		weather:    weather,
		classifier: classifier,
		logs:       logs,
		tiers:      tiers,
		cfg:        cfg,
		loc:        loc,
	}
}

// SetNudger wires the fare adjustment agent after construction; both sides
// depend on the other's service, so main connects them here.
func (s *Service) SetNudger(n Nudger) {
	s.nudger = n
}

func (s *Service) Tiers() *PriceTierTable {
	return s.tiers
}

// resolvedRequest is the request after context fallbacks, labels and route
// geometry are filled in.
type resolvedRequest struct {
	domain.EstimationRequest

	timeBucket  string
	weatherCode *int16
	zoneType    *int16

	startCity, startDistrict string
	endCity, endDistrict     string

	routeDistanceM float64
	routeDurationS float64
	maneuvers      []domain.Maneuver
	straightM      float64
	routeFromRoad  bool
}

func (r *resolvedRequest) weatherValue() int16 {
	if r.weatherCode == nil {
		return -1
	}
	return *r.weatherCode
}

func (r *resolvedRequest) zoneValue() int16 {
	if r.zoneType == nil {
		return -1
	}
	return *r.zoneType
}

// Estimate answers an estimation request. It never returns an error to the
// caller; every degraded collaborator has a documented fallback and the worst
// case is an unknown-status result at low reliability.
func (s *Service) Estimate(ctx context.Context, req domain.EstimationRequest) *domain.EstimationResult {
	requestID := uuid.NewString()
	resolved := s.resolve(ctx, req)

	candidates := s.loadCandidates(ctx, resolved)

	if match := s.runSearch(ctx, resolved, candidates); match != nil {
		result := s.matchedResult(requestID, resolved, match)
		s.audit(ctx, result)
		return result
	}

	result := s.fallbackResult(ctx, requestID, resolved)
	s.audit(ctx, result)
	return result
}

// UnnudgedEstimate reruns the matching path without the learned nudge. The
// agent trainer uses it as the counterfactual baseline; unknown outcomes
// report ok=false.
func (s *Service) UnnudgedEstimate(ctx context.Context, req domain.EstimationRequest) (float64, bool) {
	resolved := s.resolve(ctx, req)
	candidates := s.loadCandidates(ctx, resolved)

	match := s.runSearch(ctx, resolved, candidates)
	if match == nil {
		return 0, false
	}

	prices := s.applyAdjustments(match, resolved, false)
	return float64(prices.meanQ), true
}

// resolve fills context fallbacks: time bucket from the local clock, weather
// from the collaborator, labels from reverse geocoding, route distance from
// the directions collaborator with a haversine fallback.
func (s *Service) resolve(ctx context.Context, req domain.EstimationRequest) *resolvedRequest {
	r := &resolvedRequest{EstimationRequest: req}

	if req.TimeBucket != nil && *req.TimeBucket != "" {
		r.timeBucket = *req.TimeBucket
	} else {
		r.timeBucket = domain.TimeBucketFromHour(time.Now().In(s.loc).Hour())
	}

	if req.WeatherCode != nil {
		r.weatherCode = req.WeatherCode
	} else if s.weather != nil {
		code, err := s.weather.CurrentWeatherCode(ctx, req.StartLatitude, req.StartLongitude)
		if err != nil {
			logger.Warn("Weather lookup failed, estimating without weather context", "error", err)
		} else {
			r.weatherCode = &code
		}
	}

	r.zoneType = req.ZoneType

	r.startCity, r.startDistrict = req.StartCity, req.StartDistrict
	r.endCity, r.endDistrict = req.EndCity, req.EndDistrict
	if r.startCity == "" && s.geocoder != nil {
		if place, err := s.geocoder.ReverseGeocode(ctx, req.StartLatitude, req.StartLongitude); err != nil {
			logger.Warn("Reverse geocoding failed for start point, falling back to full history scan", "error", err)
		} else {
			r.startCity, r.startDistrict = place.City, place.District
		}
	}
	if r.endCity == "" && s.geocoder != nil {
		if place, err := s.geocoder.ReverseGeocode(ctx, req.EndLatitude, req.EndLongitude); err != nil {
			logger.Warn("Reverse geocoding failed for end point, falling back to full history scan", "error", err)
		} else {
			r.endCity, r.endDistrict = place.City, place.District
		}
	}

	r.straightM = geo.HaversineM(req.StartLatitude, req.StartLongitude, req.EndLatitude, req.EndLongitude)

	route, err := s.routes.GetRoute(ctx, req.StartLatitude, req.StartLongitude, req.EndLatitude, req.EndLongitude)
	if err != nil || route == nil || route.DistanceM <= 0 {
		logger.Warn("Route lookup failed, approximating road distance from straight line", "error", err)
		r.routeDistanceM = r.straightM * s.cfg.FallbackSinuosity
	} else {
		r.routeDistanceM = route.DistanceM
		r.routeDurationS = route.DurationS
		r.maneuvers = route.Maneuvers
		r.routeFromRoad = true
	}

	return r
}

func (s *Service) loadCandidates(ctx context.Context, r *resolvedRequest) []domain.Trip {
	filter := CandidateFilter{}
	for _, city := range []string{r.startCity, r.endCity} {
		if city != "" {
			filter.Cities = append(filter.Cities, city)
		}
	}
	for _, district := range []string{r.startDistrict, r.endDistrict} {
		if district != "" {
			filter.Districts = append(filter.Districts, district)
		}
	}

	candidates, err := s.trips.QueryCandidates(ctx, filter)
	if err != nil {
		logger.Error("Candidate query failed", "error", err)
		return nil
	}

	// A filtered query that finds nothing still gets a full-history pass;
	// label mismatches must not hide genuinely close trips.
	if len(candidates) == 0 && !filter.Empty() {
		candidates, err = s.trips.QueryCandidates(ctx, CandidateFilter{})
		if err != nil {
			logger.Error("Full history scan failed", "error", err)
			return nil
		}
	}

	return candidates
}

func (s *Service) matchedResult(requestID string, r *resolvedRequest, match *matchResult) *domain.EstimationResult {
	prices := s.applyAdjustments(match, r, true)

	metrics.EstimateRequests.WithLabelValues(match.level.status).Inc()

	meanQ, minQ, maxQ := prices.meanQ, prices.minQ, prices.maxQ
	return &domain.EstimationResult{
		RequestID:   requestID,
		Status:      match.level.status,
		PriceMean:   &meanQ,
		PriceMin:    &minQ,
		PriceMax:    &maxQ,
		Reliability: match.level.reliability,
		MatchCount:  len(match.matched),
		Adjustments: prices.adjustments,
		Message:     matchMessage(match),
	}
}

func matchMessage(match *matchResult) string {
	base := fmt.Sprintf("matched %d trip(s) at level %d (%s perimeter)",
		len(match.matched), match.level.number, match.perimeterMethod)
	if len(match.differingVars) > 0 {
		return base + ", differing variables: " + strings.Join(match.differingVars, ", ")
	}
	return base
}

// fallbackResult runs the classifier path plus the heuristic supplemental
// estimates. Reliability is 0.55 with a classifier value, 0.30 without.
func (s *Service) fallbackResult(ctx context.Context, requestID string, r *resolvedRequest) *domain.EstimationResult {
	result := &domain.EstimationResult{
		RequestID:   requestID,
		Status:      domain.StatusUnknown,
		Reliability: 0.30,
		Message:     "no comparable trips found in the community history",
	}

	if prediction := s.classify(ctx, r); prediction != nil {
		if price, ok := s.tiers.ByIndex(prediction.ClassIndex); ok {
			result.MLEstimate = &domain.MLEstimate{PriceCFA: price, Confidence: prediction.Confidence}
			result.PriceMean = &price
			result.Reliability = 0.55
			result.Message = "no comparable trips found, price predicted from trip features"
		}
	}

	result.Supplements = s.supplementalEstimates(ctx, r)

	metrics.EstimateRequests.WithLabelValues(domain.StatusUnknown).Inc()
	return result
}

func (s *Service) classify(ctx context.Context, r *resolvedRequest) *Prediction {
	if s.classifier == nil {
		return nil
	}

	durationMin := r.routeDurationS / 60
	sinuosity := 1.0
	if r.straightM > 0 && r.routeDistanceM > r.straightM {
		sinuosity = r.routeDistanceM / r.straightM
	}
	speed := 0.0
	if durationMin > 0 {
		speed = (r.routeDistanceM / 1000) / (durationMin / 60)
	}
	congestion := 0.0
	if r.UserCongestion != nil {
		congestion = float64(*r.UserCongestion)
	}
	bucketCode, _ := domain.TimeBucketCode(r.timeBucket)

	turns := 0
	for _, m := range r.maneuvers {
		switch m.Type {
		case "turn":
			turns++
		case "rotary", "roundabout":
			turns += 2
		}
	}

	features := FeatureVector{
		Version:     FeatureVersion,
		DistanceKm:  r.routeDistanceM / 1000,
		DurationMin: durationMin,
		StraightKm:  r.straightM / 1000,
		Sinuosity:   sinuosity,
		SpeedKmh:    speed,
		Congestion:  congestion,
		WeatherCode: int(r.weatherValue()),
		TimeBucket:  bucketCode,
		ZoneType:    int(r.zoneValue()),
		TurnCount:   turns,
	}

	prediction, err := s.classifier.Predict(ctx, features)
	if err != nil {
		logger.Warn("Classifier unavailable, returning no ML estimate", "error", err)
		metrics.ClassifierCalls.WithLabelValues("error").Inc()
		return nil
	}
	if prediction == nil {
		metrics.ClassifierCalls.WithLabelValues("empty").Inc()
		return nil
	}

	metrics.ClassifierCalls.WithLabelValues("ok").Inc()
	return prediction
}

// supplementalEstimates are the cheap heuristics attached to unknown results
// so the caller is never left without any number at all.
func (s *Service) supplementalEstimates(ctx context.Context, r *resolvedRequest) []domain.SupplementalEstimate {
	var out []domain.SupplementalEstimate
	isNight := r.timeBucket == domain.TimeBucketNight

	if perKm, err := s.trips.AveragePricePerKm(ctx); err == nil && perKm > 0 {
		price := perKm * (r.routeDistanceM / 1000)
		if isNight {
			price *= 1 + s.cfg.NightPremiumIn
		}
		if r.weatherCode != nil && *r.weatherCode >= domain.WeatherRain {
			price *= 1 + s.cfg.WeatherPremiumWorse
		}
		out = append(out, domain.SupplementalEstimate{
			Method:   "distance_based",
			PriceCFA: s.tiers.Quantize(price),
		})
	}

	standard := s.cfg.StandardDayPriceCFA
	if isNight {
		standard = s.cfg.StandardNightPriceCFA
	}
	out = append(out, domain.SupplementalEstimate{
		Method:   "standardized",
		PriceCFA: s.tiers.Quantize(standard),
	})

	if r.startCity != "" {
		if avg, err := s.trips.AveragePriceByCity(ctx, r.startCity); err == nil && avg > 0 {
			out = append(out, domain.SupplementalEstimate{
				Method:   "zone_based",
				PriceCFA: s.tiers.Quantize(avg),
			})
		}
	}

	return out
}

// audit persists the served result, best effort.
func (s *Service) audit(ctx context.Context, result *domain.EstimationResult) {
	if s.logs == nil {
		return
	}

	adjustments := datatypes.JSONMap{}
	for _, adj := range result.Adjustments {
		adjustments[adj.Kind] = adj.AmountCFA
	}

	entry := &domain.EstimationLog{
		RequestID:   result.RequestID,
		Status:      result.Status,
		PriceMean:   result.PriceMean,
		Reliability: result.Reliability,
		MatchCount:  result.MatchCount,
		Adjustments: adjustments,
	}
	if err := s.logs.Save(ctx, entry); err != nil {
		logger.Warn("Failed to persist estimation audit log", "request_id", result.RequestID, "error", err)
	}
}
