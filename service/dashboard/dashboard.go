package dashboard

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uBasket/basketgraph"
	"github.com/mycok/uBasket/itemindex/index"
	"github.com/mycok/uBasket/mining"
	"github.com/mycok/uBasket/session"
	"github.com/mycok/uBasket/traversal"
)

//go:embed ui/*
var templateFS embed.FS

const (
	overviewEndpoint = "/"
	itemsEndpoint    = "/items"
	itemEndpoint     = "/item"
	pairsEndpoint    = "/pairs"
	bundlesEndpoint  = "/bundles"
	relatedEndpoint  = "/related"
	apiPrefix        = "/api"
)

const (
	algoBFS = "bfs"
	algoDFS = "dfs"

	// Request-level fallbacks matching the reference controls of the
	// dashboard views.
	defaultMinSupport   = 2
	defaultNumOfBundles = 5
)

// Service represents the dashboard service for the uBasket application. It
// satisfies the service.Service interface.
type Service struct {
	config Config
	// Any router type that satisfies the http.Handler interface.
	router *chi.Mux
	// A template executor hook that tests can override.
	templExecutor func(
		templ *template.Template, w io.Writer, data map[string]interface{},
	) error
}

// New creates and returns a fully configured dashboard service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("dashboard service: config validation failed: %w", err)
	}

	svc := &Service{
		config:        config,
		router:        chi.NewRouter(),
		templExecutor: executeTemplate,
	}

	svc.router.Get(overviewEndpoint, svc.renderOverviewPage)
	svc.router.Get(itemsEndpoint, svc.renderItemsPage)
	svc.router.Get(itemEndpoint, svc.renderItemPage)
	svc.router.Get(pairsEndpoint, svc.renderPairsPage)
	svc.router.Get(bundlesEndpoint, svc.renderBundlesPage)
	svc.router.Get(relatedEndpoint, svc.renderRelatedPage)

	svc.router.Route(apiPrefix, func(r chi.Router) {
		r.Get("/stats", svc.serveStats)
		r.Get("/items", svc.serveItems)
		r.Get("/recommendations", svc.serveRecommendations)
		r.Get("/pairs", svc.servePairs)
		r.Get("/bundles", svc.serveBundles)
		r.Get("/related", svc.serveRelated)
		r.Get("/associations", svc.serveAssociations)

		r.NotFound(svc.serveNotFound)
	})

	fileServer := http.FileServer(http.FS(templateFS))
	svc.router.Handle("/ui/static/*", fileServer)

	svc.router.NotFound(http.HandlerFunc(svc.render404Page))

	return svc, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "dashboard" }

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.config.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	// Compile and cache dashboard service templates.
	if err := svc.newTemplateCache(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    svc.config.ListenAddr,
		Handler: svc.router,
	}

	go func() {
		<-ctx.Done()

		_ = srv.Close()
	}()

	svc.config.Logger.WithField("addr", svc.config.ListenAddr).Info(
		"started service",
	)

	if err = srv.Serve(l); err == http.ErrServerClosed {
		// Server closed gracefully.
		err = nil
	}

	return err
}

func (svc *Service) newTemplateCache() error {
	cache := make(map[string]*template.Template)

	// Get a slice of all file paths matching a '*.comp.go.tmpl' pattern.
	components, err := fs.Glob(templateFS, "ui/html/*.comp.go.tmpl")
	if err != nil {
		return err
	}

	var name string

	for _, comp := range components {
		// Extract the file name [ie 'error.comp.go.tmpl'] from the full
		// file path and assign it to the name variable.
		name = filepath.Base(comp)
		t, err := template.New(name).ParseFS(templateFS, comp)
		if err != nil {
			return err
		}

		// Parse the newly created template to add any 'layout' templates.
		t, err = t.ParseFS(templateFS, "ui/html/"+"comp.layout.go.tmpl")
		if err != nil {
			return err
		}

		// Parse the newly created template to add any 'partial' templates.
		t, err = t.ParseFS(templateFS, "ui/html/"+"footer.partial.go.tmpl")
		if err != nil {
			return err
		}

		// Add the template to the cache, using the file name
		// [ie 'error.comp.go.tmpl'] as the key.
		cache[name] = t
	}

	pages, err := fs.Glob(templateFS, "ui/html/*.page.go.tmpl")
	if err != nil {
		return err
	}

	for _, page := range pages {
		name = filepath.Base(page)
		t, err := template.New(name).ParseFS(templateFS, page)
		if err != nil {
			return err
		}

		t, err = t.ParseFS(templateFS, "ui/html/"+"page.layout.go.tmpl")
		if err != nil {
			return err
		}

		t, err = t.ParseFS(templateFS, "ui/html/"+"footer.partial.go.tmpl")
		if err != nil {
			return err
		}

		cache[name] = t
	}

	svc.config.TemplateCache = cache

	return nil
}

// renderPage executes the named cached template after merging the shared
// navigation endpoints into the template data.
func (svc *Service) renderPage(w http.ResponseWriter, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	data["overviewEndpoint"] = overviewEndpoint
	data["itemsEndpoint"] = itemsEndpoint
	data["itemEndpoint"] = itemEndpoint
	data["pairsEndpoint"] = pairsEndpoint
	data["bundlesEndpoint"] = bundlesEndpoint
	data["relatedEndpoint"] = relatedEndpoint

	if err := svc.templExecutor(svc.config.TemplateCache[name], w, data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (svc *Service) renderErrorPage(w http.ResponseWriter, status int, title, message string) {
	w.WriteHeader(status)

	svc.renderPage(w, "error.comp.go.tmpl", map[string]interface{}{
		"messageTitle":   title,
		"messageContent": message,
	})
}

func (svc *Service) renderNotLoadedPage(w http.ResponseWriter) {
	svc.renderErrorPage(
		w, http.StatusServiceUnavailable,
		"Dataset not loaded",
		"No dataset build has completed yet. The dashboard becomes available once the loader publishes its first snapshot.",
	)
}

func (svc *Service) render404Page(w http.ResponseWriter, _ *http.Request) {
	svc.renderErrorPage(
		w, http.StatusNotFound,
		"Page not found",
		"The requested page does not exist.",
	)
}

func (svc *Service) renderOverviewPage(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.renderNotLoadedPage(w)

		return
	}

	associations, err := mining.StrongestAssociations(snapshot.Graph, 0)
	if err != nil {
		svc.config.Logger.WithField("err", err).Error("association query execution failed")
		svc.renderQueryErrorPage(w)

		return
	}

	svc.renderPage(w, "overview.page.go.tmpl", map[string]interface{}{
		"buildID":      snapshot.BuildID.String(),
		"source":       snapshot.Source,
		"builtAt":      snapshot.BuiltAt,
		"stats":        snapshot.Stats,
		"numItems":     snapshot.Graph.NumItems(),
		"numEdges":     snapshot.Graph.NumEdges(),
		"associations": associations,
	})
}

func (svc *Service) renderItemsPage(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.renderNotLoadedPage(w)

		return
	}

	searchTerms := r.URL.Query().Get("q")
	if searchTerms == "" {
		svc.renderPage(w, "items.page.go.tmpl", map[string]interface{}{
			"searchTerms": "",
			"items":       itemStats(snapshot.Graph),
		})

		return
	}

	offset, _ := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)

	matchedItems, pagination, err := svc.runItemQuery(snapshot, searchTerms, offset)
	if err != nil {
		svc.config.Logger.WithField("err", err).Error("item search query execution failed")
		svc.renderQueryErrorPage(w)

		return
	}

	svc.renderPage(w, "items.page.go.tmpl", map[string]interface{}{
		"searchTerms": searchTerms,
		"items":       matchedItems,
		"pagination":  pagination,
	})
}

func (svc *Service) renderItemPage(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.renderNotLoadedPage(w)

		return
	}

	label := r.URL.Query().Get("label")

	data := map[string]interface{}{
		"label": label,
		"known": false,
	}

	if label != "" && snapshot.Graph.HasItem(label) {
		neighbours := snapshot.Graph.Neighbours(label)

		totalWeight := 0
		for _, weight := range neighbours {
			totalWeight += weight
		}

		data["known"] = true
		data["degree"] = len(neighbours)
		data["totalWeight"] = totalWeight
	}

	data["recommendations"] = mining.RecommendItems(
		snapshot.Graph, label, svc.config.NumOfRecommendations,
	)

	svc.renderPage(w, "item.page.go.tmpl", data)
}

func (svc *Service) renderPairsPage(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.renderNotLoadedPage(w)

		return
	}

	minSupport, err := queryInt(r, "min_support", defaultMinSupport)
	if err != nil {
		svc.renderErrorPage(w, http.StatusBadRequest, "Invalid request", err.Error())

		return
	}

	pairs, err := mining.FrequentPairs(snapshot.Graph, minSupport)
	if err != nil {
		svc.config.Logger.WithField("err", err).Error("frequent-pair query execution failed")
		svc.renderQueryErrorPage(w)

		return
	}

	offset, _ := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)
	page, pagination := svc.paginatePairs(pairs, offset, minSupport)

	svc.renderPage(w, "pairs.page.go.tmpl", map[string]interface{}{
		"minSupport": minSupport,
		"pairs":      page,
		"pagination": pagination,
	})
}

func (svc *Service) renderBundlesPage(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.renderNotLoadedPage(w)

		return
	}

	k, err := queryInt(r, "k", defaultNumOfBundles)
	if err != nil {
		svc.renderErrorPage(w, http.StatusBadRequest, "Invalid request", err.Error())

		return
	}

	bundles, err := mining.TopBundles(snapshot.Graph, k)
	if err != nil {
		svc.config.Logger.WithField("err", err).Error("top-bundle query execution failed")
		svc.renderQueryErrorPage(w)

		return
	}

	svc.renderPage(w, "bundles.page.go.tmpl", map[string]interface{}{
		"k":       k,
		"bundles": bundles,
	})
}

func (svc *Service) renderRelatedPage(w http.ResponseWriter, r *http.Request) {
	snapshot, err := svc.config.Sessions.Current()
	if err != nil {
		svc.renderNotLoadedPage(w)

		return
	}

	label := r.URL.Query().Get("label")
	algo := r.URL.Query().Get("algo")

	data := map[string]interface{}{
		"label":     label,
		"algo":      algo,
		"truncated": false,
	}

	if label != "" {
		related, err := relatedItems(snapshot.Graph, label, algo)
		if err != nil {
			svc.renderErrorPage(w, http.StatusBadRequest, "Invalid request", err.Error())

			return
		}

		if len(related) > svc.config.MaxRelatedItems {
			related = related[:svc.config.MaxRelatedItems]
			data["truncated"] = true
		}

		data["related"] = related
	}

	svc.renderPage(w, "related.page.go.tmpl", data)
}

func (svc *Service) renderQueryErrorPage(w http.ResponseWriter) {
	svc.renderErrorPage(
		w, http.StatusInternalServerError,
		"Error",
		"An error occurred, please try again later.",
	)
}

// runItemQuery searches the snapshot's item index and returns a single page
// of matching items. A trailing '*' on the search terms switches the query
// to a prefix search.
func (svc *Service) runItemQuery(snapshot *session.Snapshot, searchTerms string, offset uint64) (
	[]itemView, *paginationDetails, error,
) {

	query := index.Query{
		Type:       index.QueryTypeMatch,
		Expression: searchTerms,
		Offset:     offset,
	}

	if strings.HasSuffix(searchTerms, "*") {
		query.Type = index.QueryTypePrefix
		query.Expression = strings.TrimSuffix(searchTerms, "*")
	}

	docsIt, err := snapshot.Index.Search(query)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = docsIt.Close() }()

	matchedItems := make([]itemView, 0, svc.config.NumOfResultsPerPage)

	for docCount := 0; docsIt.Next() && docCount < svc.config.NumOfResultsPerPage; docCount++ {
		doc := docsIt.Document()
		matchedItems = append(matchedItems, itemView{
			Label:       doc.Label,
			Degree:      doc.Degree,
			TotalWeight: doc.TotalWeight,
		})
	}

	if err = docsIt.Error(); err != nil {
		return nil, nil, err
	}

	// Setup pagination and generate prev/next links.
	pagination := &paginationDetails{
		From:  int(offset + 1),
		To:    int(offset) + len(matchedItems),
		Total: int(docsIt.TotalCount()),
	}

	if offset > 0 {
		pagination.PrevLink = fmt.Sprintf("%s?q=%s", itemsEndpoint, searchTerms)

		prevOffset := int(offset) - svc.config.NumOfResultsPerPage
		if prevOffset > 0 {
			pagination.PrevLink += fmt.Sprintf("&offset=%d", prevOffset)
		}
	}

	nextPageOffset := int(offset) + len(matchedItems)
	if nextPageOffset < pagination.Total {
		pagination.NextLink = fmt.Sprintf(
			"%s?q=%s&offset=%d",
			itemsEndpoint, searchTerms, nextPageOffset,
		)
	}

	return matchedItems, pagination, nil
}

// paginatePairs slices one display page out of the full frequent-pair list
// and generates prev/next links for it.
func (svc *Service) paginatePairs(pairs []basketgraph.Pair, offset uint64, minSupport int) (
	[]basketgraph.Pair, *paginationDetails,
) {

	total := len(pairs)
	from := int(offset)
	if from > total {
		from = total
	}

	to := from + svc.config.NumOfPairsPerPage
	if to > total {
		to = total
	}

	page := pairs[from:to]

	pagination := &paginationDetails{
		From:  from + 1,
		To:    to,
		Total: total,
	}

	if from > 0 {
		pagination.PrevLink = fmt.Sprintf("%s?min_support=%d", pairsEndpoint, minSupport)

		prevOffset := from - svc.config.NumOfPairsPerPage
		if prevOffset > 0 {
			pagination.PrevLink += fmt.Sprintf("&offset=%d", prevOffset)
		}
	}

	if to < total {
		pagination.NextLink = fmt.Sprintf(
			"%s?min_support=%d&offset=%d",
			pairsEndpoint, minSupport, to,
		)
	}

	return page, pagination
}

// relatedItems runs the traversal selected by algo from the provided label.
// An empty algo defaults to a breadth-first traversal.
func relatedItems(g *basketgraph.Graph, label, algo string) ([]string, error) {
	switch algo {
	case "", algoBFS:
		return traversal.RelatedItemsBFS(g, label), nil
	case algoDFS:
		return traversal.RelatedItemsDFS(g, label), nil
	default:
		return nil, fmt.Errorf("unknown traversal algorithm: %q", algo)
	}
}

// queryInt parses an optional integer request parameter.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", key, raw)
	}

	return value, nil
}

// itemStats derives the display statistics for every item in the graph, in
// lexicographic item order.
func itemStats(g *basketgraph.Graph) []itemView {
	labels := g.Items()
	items := make([]itemView, 0, len(labels))

	for _, label := range labels {
		neighbours := g.Neighbours(label)

		totalWeight := 0
		for _, weight := range neighbours {
			totalWeight += weight
		}

		items = append(items, itemView{
			Label:       label,
			Degree:      len(neighbours),
			TotalWeight: totalWeight,
		})
	}

	return items
}

func executeTemplate(
	templ *template.Template, w io.Writer, data map[string]interface{},
) error {

	// Initialize a new buffer and write the template to the buffer
	// instead of straight to the response writer. In case of an error,
	// it's immediately returned.
	buff := new(bytes.Buffer)

	if err := templ.Execute(buff, data); err != nil {
		logrus.Errorf("failed to execute template: %s: %s", templ.Name(), err.Error())

		return err
	}

	_, err := buff.WriteTo(w)

	return err
}

// paginationDetails encapsulates the details for rendering a paginator component.
type paginationDetails struct {
	From     int
	To       int
	Total    int
	PrevLink string
	NextLink string
}

// itemView bundles the per-item statistics rendered by the item listing and
// search views.
type itemView struct {
	Label       string
	Degree      int
	TotalWeight int
}
