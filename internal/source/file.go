package source

import (
	"bufio"
	"context"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/donorpulse/internal/fetcher"
	"github.com/sells-group/donorpulse/internal/model"
)

// FileSource reads a campaign export document in CSV, JSON, or XLSX form.
// The location may be a local path or an HTTP/FTP URL; retrieval goes
// through the fetcher so remote exports get retry and rate limiting. HTTP
// exports are fetched conditionally: when the server reports an unchanged
// ETag the previously parsed roster is served without re-downloading.
type FileSource struct {
	client   *fetcher.Client
	location string
	format   string

	mu     sync.Mutex
	etag   string
	cached []model.Campaign
}

// NewFileSource builds a FileSource. When format is empty it is inferred
// from the location's extension.
func NewFileSource(client *fetcher.Client, location, format string) (*FileSource, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(path.Ext(location)), ".")
	}
	switch format {
	case "csv", "json", "xlsx":
	default:
		return nil, eris.Errorf("file source: unsupported format %q for %s", format, location)
	}
	return &FileSource{client: client, location: location, format: format}, nil
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// ListCampaigns implements Source. Rows that fail to parse are logged and
// skipped; a campaign roster with one bad line should still render.
func (s *FileSource) ListCampaigns(ctx context.Context, clientID string) ([]model.Campaign, error) {
	campaigns, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return filterByClient(campaigns, clientID), nil
}

func (s *FileSource) load(ctx context.Context) ([]model.Campaign, error) {
	if isHTTPLocation(s.location) {
		return s.loadConditional(ctx)
	}
	if s.format == "xlsx" {
		return s.readXLSXMaterialized(ctx)
	}

	rc, err := s.client.Open(ctx, s.location)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck
	return s.parseStream(ctx, rc)
}

// loadConditional revalidates an HTTP export against the last seen ETag. An
// unchanged export is served from the parsed copy; a changed one replaces it.
func (s *FileSource) loadConditional(ctx context.Context) ([]model.Campaign, error) {
	s.mu.Lock()
	etag := s.etag
	s.mu.Unlock()

	body, newETag, changed, err := s.client.HTTP.DownloadIfChanged(ctx, s.location, etag)
	if err != nil {
		return nil, eris.Wrapf(err, "file source: %s", s.location)
	}
	if !changed {
		s.mu.Lock()
		defer s.mu.Unlock()
		zap.L().Debug("export unchanged, serving parsed roster",
			zap.String("location", s.location),
			zap.Int("campaigns", len(s.cached)),
		)
		return s.cached, nil
	}
	defer body.Close() //nolint:errcheck

	var campaigns []model.Campaign
	if s.format == "xlsx" {
		campaigns, err = s.spoolAndParseXLSX(body)
	} else {
		campaigns, err = s.parseStream(ctx, body)
	}
	if err != nil {
		return nil, err
	}

	// Cache only when the server handed back a validator to revalidate with.
	if newETag != "" {
		s.mu.Lock()
		s.etag, s.cached = newETag, campaigns
		s.mu.Unlock()
	}
	return campaigns, nil
}

func (s *FileSource) parseStream(ctx context.Context, r io.Reader) ([]model.Campaign, error) {
	if s.format == "csv" {
		return s.parseCSV(ctx, r)
	}
	return s.parseJSON(ctx, r)
}

func isHTTPLocation(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// exportColumns maps normalized header names to canonical field keys.
// Exports from different CRMs label the same column differently.
var exportColumns = map[string]string{
	"id":             "id",
	"campaign_id":    "id",
	"client_id":      "client_id",
	"client":         "client_id",
	"name":           "name",
	"campaign_name":  "name",
	"title":          "name",
	"goal":           "goal",
	"goal_amount":    "goal",
	"target":         "goal",
	"raised":         "raised",
	"raised_amount":  "raised",
	"amount_raised":  "raised",
	"start_date":     "start_date",
	"start":          "start_date",
	"end_date":       "end_date",
	"end":            "end_date",
	"donor_count":    "donor_count",
	"donors":         "donor_count",
	"average_gift":   "average_gift",
	"avg_gift":       "average_gift",
	"marketing_cost": "marketing_cost",
	"marketing":      "marketing_cost",
	"status":         "status",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// columnIndex maps canonical field keys to their column position.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if key, ok := exportColumns[normalizeHeader(h)]; ok {
			if _, taken := idx[key]; !taken {
				idx[key] = i
			}
		}
	}
	return idx
}

func rowField(row []string, idx map[string]int, key string) string {
	i, ok := idx[key]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// campaignFromRow builds a campaign from one export row using the header
// index. ID and name are required; numeric and date fields must parse.
func campaignFromRow(row []string, idx map[string]int) (model.Campaign, error) {
	c := model.Campaign{
		ID:       strings.TrimSpace(rowField(row, idx, "id")),
		ClientID: strings.TrimSpace(rowField(row, idx, "client_id")),
		Name:     strings.TrimSpace(rowField(row, idx, "name")),
	}
	if c.ID == "" {
		return model.Campaign{}, eris.New("missing campaign id")
	}
	if c.Name == "" {
		return model.Campaign{}, eris.New("missing campaign name")
	}

	var err error
	if c.Goal, err = parseFloat(rowField(row, idx, "goal")); err != nil {
		return model.Campaign{}, eris.Wrap(err, "goal")
	}
	if c.Raised, err = parseFloat(rowField(row, idx, "raised")); err != nil {
		return model.Campaign{}, eris.Wrap(err, "raised")
	}
	if c.StartDate, err = parseDate(rowField(row, idx, "start_date")); err != nil {
		return model.Campaign{}, eris.Wrap(err, "start_date")
	}
	if c.EndDate, err = parseDate(rowField(row, idx, "end_date")); err != nil {
		return model.Campaign{}, eris.Wrap(err, "end_date")
	}
	if c.DonorCount, err = parseInt(rowField(row, idx, "donor_count")); err != nil {
		return model.Campaign{}, eris.Wrap(err, "donor_count")
	}
	if c.AverageGift, err = parseFloat(rowField(row, idx, "average_gift")); err != nil {
		return model.Campaign{}, eris.Wrap(err, "average_gift")
	}
	if c.MarketingCost, err = parseFloat(rowField(row, idx, "marketing_cost")); err != nil {
		return model.Campaign{}, eris.Wrap(err, "marketing_cost")
	}

	c.Status, _ = model.ParseStatus(rowField(row, idx, "status"))
	deriveAverageGift(&c)
	return c, nil
}

func (s *FileSource) parseCSV(ctx context.Context, r io.Reader) ([]model.Campaign, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var (
		idx       map[string]int
		campaigns []model.Campaign
		skipped   int
	)
	for row := range rowCh {
		if idx == nil {
			select {
			case header := <-headerCh:
				idx = columnIndex(header)
			default:
				return nil, eris.Errorf("file source: %s has no header row", s.location)
			}
		}
		c, err := campaignFromRow(row, idx)
		if err != nil {
			skipped++
			zap.L().Warn("skipping export row",
				zap.String("location", s.location),
				zap.Error(err),
			)
			continue
		}
		campaigns = append(campaigns, c)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "file source: %s", s.location)
	}
	if skipped > 0 {
		zap.L().Info("export rows skipped",
			zap.String("location", s.location),
			zap.Int("skipped", skipped),
			zap.Int("loaded", len(campaigns)),
		)
	}
	return campaigns, nil
}

// exportRecord is the JSON export shape. Dates are strings because CRM
// exports disagree on the format.
type exportRecord struct {
	ID            string  `json:"id"`
	ClientID      string  `json:"client_id"`
	Name          string  `json:"name"`
	Goal          float64 `json:"goal"`
	Raised        float64 `json:"raised"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	DonorCount    int     `json:"donor_count"`
	AverageGift   float64 `json:"average_gift"`
	MarketingCost float64 `json:"marketing_cost"`
	Status        string  `json:"status"`
}

// exportEnvelope is the wrapped JSON export shape some CRMs emit instead of
// a bare array. Campaigns is a pointer so a document without the key is
// distinguishable from an empty roster.
type exportEnvelope struct {
	Campaigns *[]exportRecord `json:"campaigns"`
}

// parseJSON accepts both export shapes: a bare array of records, streamed,
// and an object envelope with a campaigns array.
func (s *FileSource) parseJSON(ctx context.Context, r io.Reader) ([]model.Campaign, error) {
	br := bufio.NewReader(r)
	first, err := firstJSONByte(br)
	if err != nil {
		return nil, eris.Wrapf(err, "file source: %s", s.location)
	}

	if first == '{' {
		env, err := fetcher.DecodeJSONObject[exportEnvelope](br)
		if err != nil {
			return nil, eris.Wrapf(err, "file source: %s", s.location)
		}
		if env.Campaigns == nil {
			return nil, eris.Errorf("file source: %s has no campaigns array", s.location)
		}
		return s.convertRecords(*env.Campaigns), nil
	}

	recCh, errCh := fetcher.DecodeJSONArray[exportRecord](ctx, br)

	var campaigns []model.Campaign
	for rec := range recCh {
		c, err := rec.toCampaign()
		if err != nil {
			zap.L().Warn("skipping export record",
				zap.String("location", s.location),
				zap.String("id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		campaigns = append(campaigns, c)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "file source: %s", s.location)
	}
	return campaigns, nil
}

func (s *FileSource) convertRecords(records []exportRecord) []model.Campaign {
	var campaigns []model.Campaign
	for _, rec := range records {
		c, err := rec.toCampaign()
		if err != nil {
			zap.L().Warn("skipping export record",
				zap.String("location", s.location),
				zap.String("id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		campaigns = append(campaigns, c)
	}
	return campaigns
}

func firstJSONByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func (r exportRecord) toCampaign() (model.Campaign, error) {
	if r.ID == "" {
		return model.Campaign{}, eris.New("missing campaign id")
	}
	if r.Name == "" {
		return model.Campaign{}, eris.New("missing campaign name")
	}
	start, err := parseDate(r.StartDate)
	if err != nil {
		return model.Campaign{}, eris.Wrap(err, "start_date")
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return model.Campaign{}, eris.Wrap(err, "end_date")
	}

	status, _ := model.ParseStatus(r.Status)
	c := model.Campaign{
		ID:            r.ID,
		ClientID:      r.ClientID,
		Name:          r.Name,
		Goal:          r.Goal,
		Raised:        r.Raised,
		StartDate:     start,
		EndDate:       end,
		DonorCount:    r.DonorCount,
		AverageGift:   r.AverageGift,
		MarketingCost: r.MarketingCost,
		Status:        status,
	}
	deriveAverageGift(&c)
	return c, nil
}

// readXLSXMaterialized handles local and FTP spreadsheet exports, which the
// reader needs as a file on disk.
func (s *FileSource) readXLSXMaterialized(ctx context.Context) ([]model.Campaign, error) {
	dir, err := os.MkdirTemp("", "donorpulse-export-*")
	if err != nil {
		return nil, eris.Wrap(err, "file source: temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	local, err := s.client.Materialize(ctx, s.location, dir)
	if err != nil {
		return nil, err
	}
	return s.parseXLSXPath(local)
}

// spoolAndParseXLSX writes an already-open export body to a temp file for
// the spreadsheet reader.
func (s *FileSource) spoolAndParseXLSX(body io.Reader) ([]model.Campaign, error) {
	tmp, err := os.CreateTemp("", "donorpulse-export-*.xlsx")
	if err != nil {
		return nil, eris.Wrap(err, "file source: temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return nil, eris.Wrap(err, "file source: spool export")
	}
	if err := tmp.Close(); err != nil {
		return nil, eris.Wrap(err, "file source: spool export")
	}
	return s.parseXLSXPath(tmp.Name())
}

func (s *FileSource) parseXLSXPath(path string) ([]model.Campaign, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "file source: %s", s.location)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("file source: %s has no header row", s.location)
	}

	idx := columnIndex(rows[0])
	var campaigns []model.Campaign
	for _, row := range rows[1:] {
		c, err := campaignFromRow(row, idx)
		if err != nil {
			zap.L().Warn("skipping export row",
				zap.String("location", s.location),
				zap.Error(err),
			)
			continue
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}
