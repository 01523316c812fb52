package cfdi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Complemento is the open tagged union of extension payloads attached to a
// CFDI. Known variants are parsed into typed records; anything else degrades
// to OpaqueComplemento so an unknown extension never fails an otherwise valid
// document.
type Complemento interface {
	isComplemento()
}

func (*TimbreFiscalDigital) isComplemento()      {}
func (*Aerolineas) isComplemento()               {}
func (*CertificadoDeDestruccion) isComplemento() {}
func (*ComercioExterior) isComplemento()         {}
func (*OpaqueComplemento) isComplemento()        {}

// TimbreFiscalDigital is the digital fiscal stamp that certifies a CFDI
// (TimbreFiscalDigitalv11.xsd). Its UUID identifies the invoice to SAT's
// verification service.
type TimbreFiscalDigital struct {
	Version          string    `json:"version"`
	UUID             uuid.UUID `json:"uuid"`
	FechaTimbrado    time.Time `json:"fecha_timbrado"`
	RfcProvCertif    string    `json:"rfc_prov_certif"`
	Leyenda          *string   `json:"leyenda,omitempty"`
	SelloCFD         string    `json:"sello_cfd"`
	NoCertificadoSAT string    `json:"no_certificado_sat"`
	SelloSAT         string    `json:"sello_sat"`
}

// Aerolineas is the airline passenger-charges complemento (aerolineas.xsd).
type Aerolineas struct {
	Version     string           `json:"version"`
	TUA         decimal.Decimal  `json:"tua"`
	Importe     decimal.Decimal  `json:"importe"`
	OtrosCargos *OtrosCargos     `json:"otros_cargos,omitempty"`
}

// OtrosCargos lists additional airline charges.
type OtrosCargos struct {
	TotalCargos decimal.Decimal `json:"total_cargos"`
	Cargos      []Cargo         `json:"cargo"`
}

// Cargo is one IATA-coded airline charge.
type Cargo struct {
	CodigoCargo string          `json:"codigo_cargo"`
	Importe     decimal.Decimal `json:"importe"`
}

// CertificadoDeDestruccion certifies a vehicle destroyed by a SAT-authorized
// destruction center (certificadodedestruccion.xsd).
type CertificadoDeDestruccion struct {
	Version             string                  `json:"version"`
	Serie               string                  `json:"serie"`
	NumFolDesVeh        string                  `json:"num_fol_des_veh"`
	VehiculoDestruido   VehiculoDestruido       `json:"vehiculo_destruido"`
	InformacionAduanera *DestruccionAduanera    `json:"informacion_aduanera,omitempty"`
}

// VehiculoDestruido describes the destroyed vehicle.
type VehiculoDestruido struct {
	Marca         string  `json:"marca"`
	TipooClase    string  `json:"tipoo_clase"`
	Año           int     `json:"año"`
	Modelo        *string `json:"modelo,omitempty"`
	NIV           *string `json:"niv,omitempty"`
	NumSerie      *string `json:"num_serie,omitempty"`
	NumPlacas     string  `json:"num_placas"`
	NumMotor      *string `json:"num_motor,omitempty"`
	NumFolTarjCir string  `json:"num_fol_tarj_cir"`
}

// DestruccionAduanera is the customs record for an imported destroyed vehicle.
type DestruccionAduanera struct {
	NumPedImp string    `json:"num_ped_imp"`
	Fecha     time.Time `json:"fecha"`
	Aduana    string    `json:"aduana"`
}

// ComercioExterior carries definitive-export data (ComercioExterior11.xsd).
type ComercioExterior struct {
	Emisor                 *ComercioExteriorEmisor   `json:"emisor,omitempty"`
	Propietarios           []Propietario             `json:"propietario,omitempty"`
	Receptor               *ComercioExteriorReceptor `json:"receptor,omitempty"`
	Destinatario           *Destinatario             `json:"destinatario,omitempty"`
	Mercancias             []Mercancia               `json:"mercancias,omitempty"`
	Version                string                    `json:"version"`
	MotivoTraslado         *string                   `json:"motivo_traslado,omitempty"`
	TipoOperacion          string                    `json:"tipo_operacion"`
	ClaveDePedimento       *string                   `json:"clave_de_pedimento,omitempty"`
	CertificadoOrigen      *int                      `json:"certificado_origen,omitempty"`
	NumCertificadoOrigen   *string                   `json:"num_certificado_origen,omitempty"`
	NumExportadorConfiable *string                   `json:"num_exportador_confiable,omitempty"`
	Incoterm               *string                   `json:"incoterm,omitempty"`
	Subdivision            *int                      `json:"subdivision,omitempty"`
	Observaciones          *string                   `json:"observaciones,omitempty"`
	TipoCambioUSD          *string                   `json:"tipo_cambio_usd,omitempty"`
	TotalUSD               *decimal.Decimal          `json:"total_usd,omitempty"`
}

// Domicilio is a postal address inside the foreign-trade complemento.
type Domicilio struct {
	Calle          string  `json:"calle"`
	NumeroExterior *string `json:"numero_exterior,omitempty"`
	NumeroInterior *string `json:"numero_interior,omitempty"`
	Colonia        *string `json:"colonia,omitempty"`
	Localidad      *string `json:"localidad,omitempty"`
	Referencia     *string `json:"referencia,omitempty"`
	Municipio      *string `json:"municipio,omitempty"`
	Estado         string  `json:"estado"`
	Pais           string  `json:"pais"`
	CodigoPostal   string  `json:"codigo_postal"`
}

// ComercioExteriorEmisor complements the invoice issuer with a CURP and address.
type ComercioExteriorEmisor struct {
	Domicilio *Domicilio `json:"domicilio,omitempty"`
	CURP      *CURP      `json:"curp,omitempty"`
}

// ComercioExteriorReceptor complements the invoice recipient.
type ComercioExteriorReceptor struct {
	Domicilio    *Domicilio `json:"domicilio,omitempty"`
	NumRegIdTrib *string    `json:"num_reg_id_trib,omitempty"`
}

// Propietario identifies the owner of transported goods.
type Propietario struct {
	NumRegIdTrib      string `json:"num_reg_id_trib"`
	ResidenciaFiscal  string `json:"residencia_fiscal"`
}

// Destinatario identifies the goods' destination party.
type Destinatario struct {
	Domicilios   []Domicilio `json:"domicilio"`
	NumRegIdTrib *string     `json:"num_reg_id_trib,omitempty"`
	Nombre       *string     `json:"nombre,omitempty"`
}

// Mercancia is one exported good declared to customs.
type Mercancia struct {
	NoIdentificacion         string                  `json:"no_identificacion"`
	FraccionArancelaria      *string                 `json:"fraccion_arancelaria,omitempty"`
	CantidadAduana           *decimal.Decimal        `json:"cantidad_aduana,omitempty"`
	UnidadAduana             *string                 `json:"unidad_aduana,omitempty"`
	ValorUnitarioAduana      *decimal.Decimal        `json:"valor_unitario_aduana,omitempty"`
	ValorDolares             decimal.Decimal         `json:"valor_dolares"`
	DescripcionesEspecificas []DescripcionEspecifica `json:"descripciones_especificas,omitempty"`
}

// DescripcionEspecifica refines a Mercancia entry.
type DescripcionEspecifica struct {
	Marca       string  `json:"marca"`
	Modelo      *string `json:"modelo,omitempty"`
	SubModelo   *string `json:"sub_modelo,omitempty"`
	NumeroSerie *string `json:"numero_serie,omitempty"`
}

// OpaqueComplemento preserves the normalized raw structure of an extension
// this package does not recognize.
type OpaqueComplemento struct {
	Raw Node `json:"raw"`
}

// parseComplementos coerces the complemento field into an ordered sequence
// and resolves each element. Known variants are tried in a fixed priority
// order, the fiscal stamp first since it is the most structurally distinct
// and most commonly required.
func parseComplementos(path string, raw interface{}) ([]Complemento, error) {
	nodes, err := dict2listFlatten(path, raw)
	if err != nil {
		return nil, err
	}
	result := make([]Complemento, 0, len(nodes))
	for _, item := range nodes {
		node, ok := item.(Node)
		if !ok {
			return nil, NewShapeError(path, "complemento elements must be mappings")
		}
		result = append(result, resolveComplemento(path, node))
	}
	return result, nil
}

func resolveComplemento(path string, node Node) Complemento {
	if tfd, err := parseTimbreFiscalDigital(node, path); err == nil {
		return tfd
	}
	if aer, err := parseAerolineas(node, path); err == nil {
		return aer
	}
	if cert, err := parseCertificadoDeDestruccion(node, path); err == nil {
		return cert
	}
	if ce, err := parseComercioExterior(node, path); err == nil {
		return ce
	}
	return &OpaqueComplemento{Raw: node}
}

func parseTimbreFiscalDigital(node Node, path string) (*TimbreFiscalDigital, error) {
	d := newDecoder(node, path+".timbre_fiscal_digital")
	tfd := &TimbreFiscalDigital{
		Version:          d.requiredString("version"),
		UUID:             d.requiredUUID("uuid"),
		FechaTimbrado:    d.requiredTime("fecha_timbrado"),
		RfcProvCertif:    d.requiredString("rfc_prov_certif"),
		Leyenda:          d.optionalString("leyenda"),
		SelloCFD:         d.requiredString("sello_cfd"),
		NoCertificadoSAT: d.requiredString("no_certificado_sat"),
		SelloSAT:         d.requiredString("sello_sat"),
	}
	if d.err != nil {
		return nil, d.err
	}
	return tfd, nil
}

func parseAerolineas(node Node, path string) (*Aerolineas, error) {
	d := newDecoder(node, path+".aerolineas")
	aer := &Aerolineas{
		Version: d.requiredString("version"),
		TUA:     d.anyDecimal("tua"),
		Importe: d.anyDecimal("importe"),
	}
	if oc, ok := d.childNode("otros_cargos"); ok {
		cargos, err := parseOtrosCargos(oc, d.fieldPath("otros_cargos"))
		if err != nil {
			d.setErr(err)
		} else {
			aer.OtrosCargos = cargos
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return aer, nil
}

func parseOtrosCargos(node Node, path string) (*OtrosCargos, error) {
	d := newDecoder(node, path)
	oc := &OtrosCargos{
		TotalCargos: d.anyDecimal("total_cargos"),
	}
	for _, n := range d.listField("cargo", dict2list) {
		cd := newDecoder(n, d.fieldPath("cargo"))
		oc.Cargos = append(oc.Cargos, Cargo{
			CodigoCargo: cd.requiredString("codigo_cargo"),
			Importe:     cd.anyDecimal("importe"),
		})
		d.setErr(cd.err)
	}
	if len(oc.Cargos) == 0 {
		d.fail("cargo", nil, "required", "missing required field")
	}
	if d.err != nil {
		return nil, d.err
	}
	return oc, nil
}

func parseCertificadoDeDestruccion(node Node, path string) (*CertificadoDeDestruccion, error) {
	d := newDecoder(node, path+".certificado_de_destruccion")
	cert := &CertificadoDeDestruccion{
		Version:      d.requiredString("version"),
		Serie:        d.requiredString("serie"),
		NumFolDesVeh: d.requiredString("num_fol_des_veh"),
	}
	veh, ok := d.childNode("vehiculo_destruido")
	if !ok {
		d.fail("vehiculo_destruido", nil, "required", "missing required field")
	} else {
		vd := newDecoder(veh, d.fieldPath("vehiculo_destruido"))
		cert.VehiculoDestruido = VehiculoDestruido{
			Marca:         vd.requiredString("marca"),
			TipooClase:    vd.requiredString("tipoo_clase"),
			Año:           vd.requiredInt("año"),
			Modelo:        vd.optionalString("modelo"),
			NIV:           vd.optionalString("niv"),
			NumSerie:      vd.optionalString("num_serie"),
			NumPlacas:     vd.requiredString("num_placas"),
			NumMotor:      vd.optionalString("num_motor"),
			NumFolTarjCir: vd.requiredString("num_fol_tarj_cir"),
		}
		d.setErr(vd.err)
	}
	if adu, ok := d.childNode("informacion_aduanera"); ok {
		ad := newDecoder(adu, d.fieldPath("informacion_aduanera"))
		cert.InformacionAduanera = &DestruccionAduanera{
			NumPedImp: ad.requiredString("num_ped_imp"),
			Fecha:     ad.requiredTime("fecha"),
			Aduana:    ad.requiredString("aduana"),
		}
		d.setErr(ad.err)
	}
	if d.err != nil {
		return nil, d.err
	}
	return cert, nil
}

func parseComercioExterior(node Node, path string) (*ComercioExterior, error) {
	d := newDecoder(node, path+".comercio_exterior")
	ce := &ComercioExterior{
		Version:                d.requiredString("version"),
		MotivoTraslado:         d.optionalString("motivo_traslado"),
		TipoOperacion:          d.requiredString("tipo_operacion"),
		ClaveDePedimento:       d.optionalString("clave_de_pedimento"),
		CertificadoOrigen:      d.optionalInt("certificado_origen"),
		NumCertificadoOrigen:   d.optionalString("num_certificado_origen"),
		NumExportadorConfiable: d.optionalString("num_exportador_confiable"),
		Incoterm:               d.optionalString("incoterm"),
		Subdivision:            d.optionalInt("subdivision"),
		Observaciones:          d.optionalString("observaciones"),
		TipoCambioUSD:          d.optionalString("tipo_cambio_usd"),
		TotalUSD:               d.optionalAnyDecimal("total_usd"),
	}
	if em, ok := d.childNode("emisor"); ok {
		ed := newDecoder(em, d.fieldPath("emisor"))
		ce.Emisor = &ComercioExteriorEmisor{
			CURP: ed.optionalCURP("curp"),
		}
		ce.Emisor.Domicilio = parseDomicilio(ed, "domicilio")
		d.setErr(ed.err)
	}
	if re, ok := d.childNode("receptor"); ok {
		rd := newDecoder(re, d.fieldPath("receptor"))
		ce.Receptor = &ComercioExteriorReceptor{
			NumRegIdTrib: rd.optionalString("num_reg_id_trib"),
		}
		ce.Receptor.Domicilio = parseDomicilio(rd, "domicilio")
		d.setErr(rd.err)
	}
	for _, n := range d.listField("propietario", dict2list) {
		pd := newDecoder(n, d.fieldPath("propietario"))
		ce.Propietarios = append(ce.Propietarios, Propietario{
			NumRegIdTrib:     pd.requiredString("num_reg_id_trib"),
			ResidenciaFiscal: pd.requiredString("residencia_fiscal"),
		})
		d.setErr(pd.err)
	}
	if dest, ok := d.childNode("destinatario"); ok {
		dd := newDecoder(dest, d.fieldPath("destinatario"))
		destinatario := &Destinatario{
			NumRegIdTrib: dd.optionalString("num_reg_id_trib"),
			Nombre:       dd.optionalString("nombre"),
		}
		for _, n := range dd.listField("domicilio", dict2list) {
			hd := newDecoder(n, dd.fieldPath("domicilio"))
			if dom := parseDomicilioNode(hd); dom != nil {
				destinatario.Domicilios = append(destinatario.Domicilios, *dom)
			}
			dd.setErr(hd.err)
		}
		ce.Destinatario = destinatario
		d.setErr(dd.err)
	}
	for _, n := range d.listField("mercancias", dict2listFlatten) {
		md := newDecoder(n, d.fieldPath("mercancias"))
		m := Mercancia{
			NoIdentificacion:    md.requiredString("no_identificacion"),
			FraccionArancelaria: md.optionalString("fraccion_arancelaria"),
			CantidadAduana:      md.optionalAnyDecimal("cantidad_aduana"),
			UnidadAduana:        md.optionalString("unidad_aduana"),
			ValorUnitarioAduana: md.optionalAnyDecimal("valor_unitario_aduana"),
			ValorDolares:        md.anyDecimal("valor_dolares"),
		}
		for _, dn := range md.listField("descripciones_especificas", dict2list) {
			sd := newDecoder(dn, md.fieldPath("descripciones_especificas"))
			m.DescripcionesEspecificas = append(m.DescripcionesEspecificas, DescripcionEspecifica{
				Marca:       sd.requiredString("marca"),
				Modelo:      sd.optionalString("modelo"),
				SubModelo:   sd.optionalString("sub_modelo"),
				NumeroSerie: sd.optionalString("numero_serie"),
			})
			md.setErr(sd.err)
		}
		ce.Mercancias = append(ce.Mercancias, m)
		d.setErr(md.err)
	}
	if d.err != nil {
		return nil, d.err
	}
	return ce, nil
}

func parseDomicilio(d *decoder, key string) *Domicilio {
	node, ok := d.childNode(key)
	if !ok {
		return nil
	}
	dd := newDecoder(node, d.fieldPath(key))
	dom := parseDomicilioNode(dd)
	d.setErr(dd.err)
	return dom
}

func parseDomicilioNode(d *decoder) *Domicilio {
	dom := &Domicilio{
		Calle:          d.requiredString("calle"),
		NumeroExterior: d.optionalString("numero_exterior"),
		NumeroInterior: d.optionalString("numero_interior"),
		Colonia:        d.optionalString("colonia"),
		Localidad:      d.optionalString("localidad"),
		Referencia:     d.optionalString("referencia"),
		Municipio:      d.optionalString("municipio"),
		Estado:         d.requiredString("estado"),
		Pais:           d.requiredString("pais"),
		CodigoPostal:   d.requiredString("codigo_postal"),
	}
	if d.err != nil {
		return nil
	}
	return dom
}
