// Package inference is the stateless query layer over the artifact
// registry. Every operation is a lookup against in-memory structures built
// at bootstrap; nothing here touches the network or disk.
package inference

import (
	"math"
	"time"

	"riskd/internal/registry"
	"riskd/pkg/types"
)

// Service answers dashboard queries from the current generation.
type Service struct {
	reg               *registry.Registry
	dashboardFeatures []string
	startTime         time.Time
}

// New constructs a Service over reg. dashboardFeatures is the fixed set of
// feature values shown on the per-customer dashboard.
func New(reg *registry.Registry, dashboardFeatures []string) *Service {
	return &Service{
		reg:               reg,
		dashboardFeatures: append([]string(nil), dashboardFeatures...),
		startTime:         time.Now(),
	}
}

// Ready reports whether a generation is published and queries can be served.
func (s *Service) Ready() bool { return s.reg.Ready() }

func (s *Service) current() (*registry.Generation, error) {
	gen, err := s.reg.Current()
	if err != nil {
		return nil, ErrUnavailable("no generation loaded")
	}
	return gen, nil
}

// CustomerIDs returns all known customer ids in feature table order.
func (s *Service) CustomerIDs() ([]int64, error) {
	gen, err := s.current()
	if err != nil {
		return nil, err
	}
	return gen.Table.IDs(), nil
}

// Score returns the precomputed default probability and the threshold
// decision for one customer.
func (s *Service) Score(id int64) (types.ScoreData, error) {
	gen, err := s.current()
	if err != nil {
		return types.ScoreData{}, err
	}
	p, ok := gen.Scores[id]
	if !ok {
		return types.ScoreData{}, ErrCustomerNotFound(id)
	}
	decision := "accepted"
	if p >= gen.Model.Threshold {
		decision = "refused"
	}
	return types.ScoreData{
		Probability: p,
		Threshold:   gen.Model.Threshold,
		Decision:    decision,
	}, nil
}

// Features returns the dashboard feature values for one customer. Missing
// cells map to nil so JSON renders them as null.
func (s *Service) Features(id int64) (map[string]*float64, error) {
	gen, err := s.current()
	if err != nil {
		return nil, err
	}
	if _, ok := gen.Table.Row(id); !ok {
		return nil, ErrCustomerNotFound(id)
	}
	out := make(map[string]*float64, len(s.dashboardFeatures))
	for _, f := range s.dashboardFeatures {
		v, ok := gen.Table.Value(id, f)
		if !ok || math.IsNaN(v) {
			out[f] = nil
			continue
		}
		vv := v
		out[f] = &vv
	}
	return out, nil
}

// LocalExplanation returns the precomputed SHAP attribution vector for one
// customer, aligned to the modeled feature names.
func (s *Service) LocalExplanation(id int64) (types.ShapData, error) {
	gen, err := s.current()
	if err != nil {
		return types.ShapData{}, err
	}
	if _, ok := gen.Table.Row(id); !ok {
		return types.ShapData{}, ErrCustomerNotFound(id)
	}
	if gen.Shap == nil {
		return types.ShapData{}, ErrUnavailable("shap explanation")
	}
	vec, ok := gen.Shap.Vector(id)
	if !ok {
		return types.ShapData{}, ErrUnavailable("shap explanation for customer")
	}
	return types.ShapData{
		BaseValue:    gen.Shap.BaseValue,
		Values:       append([]float64(nil), vec...),
		FeatureNames: gen.Shap.FeatureNames,
	}, nil
}

// Bivariate returns paired value series for two features across all
// customers, dropping rows where either value is missing.
func (s *Service) Bivariate(featX, featY string) (types.BivariateData, error) {
	gen, err := s.current()
	if err != nil {
		return types.BivariateData{}, err
	}
	if !gen.Table.HasColumn(featX) {
		return types.BivariateData{}, ErrUnknownFeature(featX)
	}
	if !gen.Table.HasColumn(featY) {
		return types.BivariateData{}, ErrUnknownFeature(featY)
	}
	ids := gen.Table.IDs()
	out := types.BivariateData{
		X: make([]float64, 0, len(ids)),
		Y: make([]float64, 0, len(ids)),
	}
	for _, id := range ids {
		x, _ := gen.Table.Value(id, featX)
		y, _ := gen.Table.Value(id, featY)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		out.X = append(out.X, x)
		out.Y = append(out.Y, y)
	}
	return out, nil
}

// GlobalImage returns the precomputed global explanation image bytes.
func (s *Service) GlobalImage() ([]byte, error) {
	gen, err := s.current()
	if err != nil {
		return nil, err
	}
	if gen.GlobalImage == nil {
		return nil, ErrUnavailable("global explanation image")
	}
	return gen.GlobalImage, nil
}

// Distribution returns the precomputed histogram for one feature.
func (s *Service) Distribution(feature string) (types.DistributionData, error) {
	gen, err := s.current()
	if err != nil {
		return types.DistributionData{}, err
	}
	if !gen.Table.HasColumn(feature) {
		return types.DistributionData{}, ErrUnknownFeature(feature)
	}
	h, ok := gen.Distributions[feature]
	if !ok {
		return types.DistributionData{}, ErrUnavailable("distribution for " + feature)
	}
	return types.DistributionData{
		Feature:  feature,
		BinEdges: h.BinEdges,
		Counts:   h.Counts,
	}, nil
}

// GenerationID returns the id of the published generation, empty before
// publish.
func (s *Service) GenerationID() string {
	gen, err := s.reg.Current()
	if err != nil {
		return ""
	}
	return gen.ID
}

// Status reports service and artifact state for operators.
func (s *Service) Status() types.StatusResponse {
	now := time.Now()
	resp := types.StatusResponse{
		State:          "loading",
		UptimeSeconds:  int64(now.Sub(s.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	gen, err := s.reg.Current()
	if err != nil {
		return resp
	}
	resp.State = "ready"
	resp.GenerationID = gen.ID
	resp.LoadedAtUnix = gen.LoadedAt.Unix()
	resp.Customers = gen.Table.Len()
	resp.Features = len(gen.Model.Features)
	resp.Artifacts = gen.Artifacts
	return resp
}
