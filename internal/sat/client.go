package sat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
)

const (
	DefaultBaseURL = "https://consultaqr.facturaelectronica.sat.gob.mx/ConsultaCFDIService.svc"
	DefaultTimeout = 30 * time.Second

	soapAction = "http://tempuri.org/IConsultaCFDIService/Consulta"
)

const envelopeTemplate = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tem="http://tempuri.org/">
  <soapenv:Header/>
  <soapenv:Body>
    <tem:Consulta>
      <tem:expresionImpresa><![CDATA[%s]]></tem:expresionImpresa>
    </tem:Consulta>
  </soapenv:Body>
</soapenv:Envelope>`

// StatusResponse encloses the ConsultaCFDIService response for a Consulta
// action.
type StatusResponse struct {
	CodigoEstatus      string `json:"codigo_estatus"`
	EsCancelable       string `json:"es_cancelable"`
	Estado             string `json:"estado"`
	EstatusCancelacion string `json:"estatus_cancelacion,omitempty"`
	ValidacionEFOS     string `json:"validacion_efos"`
}

// Vigente reports whether SAT considers the invoice in force.
func (r *StatusResponse) Vigente() bool {
	return r.Estado == "Vigente"
}

// Client queries SAT's ConsultaCFDIService SOAP endpoint for invoice status.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL sets a custom service URL
func WithBaseURL(url string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.baseURL = url
	}
}

// WithTimeout sets custom HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(cfg *clientConfig) {
		cfg.timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client, overriding WithTimeout
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(cfg *clientConfig) {
		cfg.httpClient = httpClient
	}
}

// NewClient creates a client for SAT's verification service
func NewClient(opts ...ClientOption) *Client {
	cfg := &clientConfig{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:    cfg.baseURL,
		httpClient: httpClient,
	}
}

// VerifyDocument checks a parsed invoice against SAT. The document must carry
// a fiscal stamp.
func (c *Client) VerifyDocument(ctx context.Context, doc cfdi.Document) (*StatusResponse, error) {
	key, err := cfdi.KeyOf(doc)
	if err != nil {
		return nil, err
	}
	return c.Verify(ctx, key)
}

// Verify checks an invoice by its verification key.
func (c *Client) Verify(ctx context.Context, key cfdi.VerificationKey) (*StatusResponse, error) {
	return c.VerifyValues(ctx, key.UUID.String(), string(key.IssuerRFC), string(key.RecipientRFC), key.Total)
}

// VerifyValues checks an invoice by its raw identifying values.
func (c *Client) VerifyValues(ctx context.Context, uuid, rfcEmisor, rfcReceptor string, total decimal.Decimal) (*StatusResponse, error) {
	expresion := fmt.Sprintf("?re=%s&rr=%s&tt=%s&id=%s", rfcEmisor, rfcReceptor, total.String(), uuid)
	body := fmt.Sprintf(envelopeTemplate, expresion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build SAT request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml;charset="utf-8"`)
	req.Header.Set("SOAPAction", soapAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SAT request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read SAT response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SAT returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return parseConsultaResponse(data)
}

// parseConsultaResponse extracts the ConsultaResult fields from the SOAP
// envelope, matching tags by local name since SAT's namespace prefixes are
// not stable.
func parseConsultaResponse(data []byte) (*StatusResponse, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("SAT response is not valid XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("SAT response is empty")
	}

	result := findByLocalName(root, "ConsultaResult")
	if result == nil {
		return nil, fmt.Errorf("SAT response has no ConsultaResult element")
	}

	status := &StatusResponse{
		CodigoEstatus:      childText(result, "CodigoEstatus"),
		EsCancelable:       childText(result, "EsCancelable"),
		Estado:             childText(result, "Estado"),
		EstatusCancelacion: childText(result, "EstatusCancelacion"),
		ValidacionEFOS:     childText(result, "ValidacionEFOS"),
	}
	if status.CodigoEstatus == "" && status.Estado == "" {
		return nil, fmt.Errorf("SAT response was not in a known format")
	}
	return status, nil
}

func findByLocalName(elem *etree.Element, localName string) *etree.Element {
	if localTag(elem.Tag) == localName {
		return elem
	}
	for _, child := range elem.ChildElements() {
		if found := findByLocalName(child, localName); found != nil {
			return found
		}
	}
	return nil
}

func childText(elem *etree.Element, localName string) string {
	for _, child := range elem.ChildElements() {
		if localTag(child.Tag) == localName {
			return strings.TrimSpace(child.Text())
		}
	}
	return ""
}

func localTag(tag string) string {
	if i := strings.LastIndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}
