package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/cfdi-processor/internal/server"
)

const stampedXML = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Version="4.0" Fecha="2022-03-01T10:00:00"
    Sello="sello=" NoCertificado="30001000000400002495" Certificado="cert=" SubTotal="100.00"
    Moneda="MXN" Total="116.00" TipoDeComprobante="I" Exportacion="01" LugarExpedicion="64000">
  <cfdi:Emisor Rfc="AAA010101AAA" Nombre="Emisor de Prueba" RegimenFiscal="601"/>
  <cfdi:Receptor Rfc="BBB010101BB1" Nombre="Receptor de Prueba" DomicilioFiscalReceptor="64000"
      RegimenFiscalReceptor="616" UsoCFDI="G03"/>
  <cfdi:Conceptos>
    <cfdi:Concepto ClaveProdServ="01010101" Cantidad="1" ClaveUnidad="H87" Descripcion="Producto"
        ValorUnitario="100.00" Importe="100.00" ObjetoImp="02"/>
  </cfdi:Conceptos>
  <cfdi:Complemento>
    <tfd:TimbreFiscalDigital xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital" Version="1.1"
        UUID="ad662d33-6934-459c-a128-bdf0393e0f44" FechaTimbrado="2022-03-01T10:00:05"
        RfcProvCertif="SAT970701NN3" SelloCFD="abc=" NoCertificadoSAT="30001000000400002495" SelloSAT="def="/>
  </cfdi:Complemento>
</cfdi:Comprobante>`

const consultaResponse = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <ConsultaResponse xmlns="http://tempuri.org/">
      <ConsultaResult xmlns:a="http://schemas.datacontract.org/2004/07/Sat.Cfdi.Negocio.ConsultaCfdi.Servicio">
        <a:CodigoEstatus>S - Comprobante obtenido satisfactoriamente.</a:CodigoEstatus>
        <a:EsCancelable>Cancelable sin aceptación</a:EsCancelable>
        <a:Estado>Vigente</a:Estado>
        <a:EstatusCancelacion/>
        <a:ValidacionEFOS>200</a:ValidacionEFOS>
      </ConsultaResult>
    </ConsultaResponse>
  </s:Body>
</s:Envelope>`

func newTestServer(t *testing.T, config *server.Config) *server.Server {
	t.Helper()
	if config == nil {
		config = &server.Config{Address: ":0"}
	}
	return server.NewServer(config)
}

func doRequest(t *testing.T, s *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestServer_Parse(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/v1/parse", stampedXML)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"version":"4.0"`)
	assert.Contains(t, w.Body.String(), `"rfc":"AAA010101AAA"`)
}

func TestServer_Parse_EmptyBody(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/v1/parse", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Parse_MalformedXML(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(t, s, http.MethodPost, "/api/v1/parse", "<cfdi:Comprobante")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Parse_UnsupportedVersion(t *testing.T) {
	s := newTestServer(t, nil)
	content := strings.Replace(stampedXML, `Version="4.0"`, `Version="3.2"`, 1)

	w := doRequest(t, s, http.MethodPost, "/api/v1/parse", content)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"supported":["3.3","4.0"]`)
}

func TestServer_Parse_InvalidDocument(t *testing.T) {
	s := newTestServer(t, nil)
	content := strings.Replace(stampedXML, `Rfc="AAA010101AAA"`, `Rfc="NOPE"`, 1)

	w := doRequest(t, s, http.MethodPost, "/api/v1/parse", content)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"path"`)
}

func TestServer_Verify(t *testing.T) {
	satServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(consultaResponse))
	}))
	defer satServer.Close()

	s := newTestServer(t, &server.Config{Address: ":0", SATBaseURL: satServer.URL})

	w := doRequest(t, s, http.MethodPost, "/api/v1/verify", stampedXML)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"uuid":"ad662d33-6934-459c-a128-bdf0393e0f44"`)
	assert.Contains(t, w.Body.String(), `"estado":"Vigente"`)
}

func TestServer_Verify_Disabled(t *testing.T) {
	s := newTestServer(t, &server.Config{Address: ":0", VerifyDisabled: true})

	w := doRequest(t, s, http.MethodPost, "/api/v1/verify", stampedXML)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_Verify_UnstampedDocument(t *testing.T) {
	s := newTestServer(t, &server.Config{Address: ":0"})
	content := strings.Replace(stampedXML,
		`<cfdi:Complemento>`, `<!--`, 1)
	content = strings.Replace(content, `</cfdi:Complemento>`, `-->`, 1)

	w := doRequest(t, s, http.MethodPost, "/api/v1/verify", content)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestServer_Verify_SATFailure(t *testing.T) {
	satServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer satServer.Close()

	s := newTestServer(t, &server.Config{Address: ":0", SATBaseURL: satServer.URL})

	w := doRequest(t, s, http.MethodPost, "/api/v1/verify", stampedXML)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
