package dashboard

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mycok/uBasket/basketgraph"
	"github.com/mycok/uBasket/mining"
)

func (svc *Service) serveStats(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.writeNotLoaded(w)

		return
	}

	svc.writeJSON(w, http.StatusOK, apiStats{
		BuildID:         snapshot.BuildID.String(),
		Source:          snapshot.Source,
		BuiltAt:         snapshot.BuiltAt,
		RecordsRead:     snapshot.Stats.RecordsRead,
		RecordsSkipped:  snapshot.Stats.RecordsSkipped,
		Baskets:         snapshot.Stats.Baskets,
		Items:           snapshot.Graph.NumItems(),
		CoPurchasePairs: snapshot.Graph.NumEdges(),
	})
}

func (svc *Service) serveItems(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.writeNotLoaded(w)

		return
	}

	items := itemStats(snapshot.Graph)

	apiItems := make([]apiItem, 0, len(items))
	for _, item := range items {
		apiItems = append(apiItems, apiItem(item))
	}

	svc.writeJSON(w, http.StatusOK, apiItemList{
		Total: len(apiItems),
		Items: apiItems,
	})
}

func (svc *Service) serveRecommendations(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.writeNotLoaded(w)

		return
	}

	item := r.URL.Query().Get("item")
	if item == "" {
		svc.writeJSON(w, http.StatusBadRequest, apiError{Error: "missing item parameter"})

		return
	}

	topN, err := queryInt(r, "n", svc.config.NumOfRecommendations)
	if err != nil {
		svc.writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})

		return
	}

	recommendations := mining.RecommendItems(snapshot.Graph, item, topN)

	apiRecommendations := make([]apiRecommendation, 0, len(recommendations))
	for _, rec := range recommendations {
		apiRecommendations = append(apiRecommendations, apiRecommendation(rec))
	}

	svc.writeJSON(w, http.StatusOK, apiRecommendationList{
		Item:            item,
		Recommendations: apiRecommendations,
	})
}

func (svc *Service) servePairs(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.writeNotLoaded(w)

		return
	}

	minSupport, err := queryInt(r, "min_support", defaultMinSupport)
	if err != nil {
		svc.writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})

		return
	}

	pairs, err := mining.FrequentPairs(snapshot.Graph, minSupport)
	if err != nil {
		svc.serveQueryError(w, "frequent-pair query execution failed", err)

		return
	}

	svc.writeJSON(w, http.StatusOK, apiPairList{
		MinSupport: minSupport,
		Total:      len(pairs),
		Pairs:      toAPIPairs(pairs),
	})
}

func (svc *Service) serveBundles(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.writeNotLoaded(w)

		return
	}

	k, err := queryInt(r, "k", defaultNumOfBundles)
	if err != nil {
		svc.writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})

		return
	}

	bundles, err := mining.TopBundles(snapshot.Graph, k)
	if err != nil {
		svc.serveQueryError(w, "top-bundle query execution failed", err)

		return
	}

	svc.writeJSON(w, http.StatusOK, apiBundleList{
		K:       k,
		Bundles: toAPIPairs(bundles),
	})
}

func (svc *Service) serveRelated(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.writeNotLoaded(w)

		return
	}

	item := r.URL.Query().Get("item")
	if item == "" {
		svc.writeJSON(w, http.StatusBadRequest, apiError{Error: "missing item parameter"})

		return
	}

	algo := r.URL.Query().Get("algo")

	related, err := relatedItems(snapshot.Graph, item, algo)
	if err != nil {
		svc.writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})

		return
	}

	if len(related) > svc.config.MaxRelatedItems {
		related = related[:svc.config.MaxRelatedItems]
	}

	if related == nil {
		related = []string{}
	}

	if algo == "" {
		algo = algoBFS
	}

	svc.writeJSON(w, http.StatusOK, apiRelatedList{
		Item:    item,
		Algo:    algo,
		Related: related,
	})
}

func (svc *Service) serveAssociations(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.writeNotLoaded(w)

		return
	}

	// A zero value lets the mining package apply its own default count.
	topN, err := queryInt(r, "n", 0)
	if err != nil {
		svc.writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})

		return
	}

	associations, err := mining.StrongestAssociations(snapshot.Graph, topN)
	if err != nil {
		svc.serveQueryError(w, "association query execution failed", err)

		return
	}

	svc.writeJSON(w, http.StatusOK, apiAssociationList{
		Associations: toAPIPairs(associations),
	})
}

func (svc *Service) serveNotFound(w http.ResponseWriter, _ *http.Request) {
	svc.writeJSON(w, http.StatusNotFound, apiError{Error: "resource not found"})
}

func (svc *Service) serveQueryError(w http.ResponseWriter, message string, err error) {
	svc.config.Logger.WithField("err", err).Error(message)
	svc.writeJSON(w, http.StatusInternalServerError, apiError{
		Error: "an error occurred, please try again later",
	})
}

func (svc *Service) writeNotLoaded(w http.ResponseWriter) {
	svc.writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "dataset not loaded yet"})
}

func (svc *Service) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		svc.config.Logger.WithField("err", err).Error("failed to encode response payload")
	}
}

func toAPIPairs(pairs []basketgraph.Pair) []apiPair {
	apiPairs := make([]apiPair, 0, len(pairs))
	for _, pair := range pairs {
		apiPairs = append(apiPairs, apiPair(pair))
	}

	return apiPairs
}

type apiError struct {
	Error string `json:"error"`
}

type apiStats struct {
	BuildID         string    `json:"build_id"`
	Source          string    `json:"source"`
	BuiltAt         time.Time `json:"built_at"`
	RecordsRead     int       `json:"records_read"`
	RecordsSkipped  int       `json:"records_skipped"`
	Baskets         int       `json:"baskets"`
	Items           int       `json:"items"`
	CoPurchasePairs int       `json:"co_purchase_pairs"`
}

type apiItem struct {
	Label       string `json:"label"`
	Degree      int    `json:"degree"`
	TotalWeight int    `json:"total_weight"`
}

type apiItemList struct {
	Total int       `json:"total"`
	Items []apiItem `json:"items"`
}

type apiPair struct {
	ItemA  string `json:"item_a"`
	ItemB  string `json:"item_b"`
	Weight int    `json:"weight"`
}

type apiPairList struct {
	MinSupport int       `json:"min_support"`
	Total      int       `json:"total"`
	Pairs      []apiPair `json:"pairs"`
}

type apiBundleList struct {
	K       int       `json:"k"`
	Bundles []apiPair `json:"bundles"`
}

type apiRecommendation struct {
	Item   string `json:"item"`
	Weight int    `json:"weight"`
}

type apiRecommendationList struct {
	Item            string              `json:"item"`
	Recommendations []apiRecommendation `json:"recommendations"`
}

type apiRelatedList struct {
	Item    string   `json:"item"`
	Algo    string   `json:"algo"`
	Related []string `json:"related"`
}

type apiAssociationList struct {
	Associations []apiPair `json:"associations"`
}
