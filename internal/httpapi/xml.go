// Package httpapi exposes the ProtocolEngine over HTTP (spec §4.5,
// §6): a single /oai route accepting both GET and POST, rendering
// the OAI-PMH v2.0 XML envelope the teacher's JSON controllers render
// as a JSON envelope.
package httpapi

import (
	"encoding/xml"
	"sort"
	"time"

	"github.com/turahe/kuha-go/internal/datecodec"
	"github.com/turahe/kuha-go/internal/engine"
	"github.com/turahe/kuha-go/internal/oaierrors"
)

const oaiPMHNamespace = "http://www.openarchives.org/OAI/2.0/"

// envelope is the root <OAI-PMH> element every response is wrapped in.
type envelope struct {
	XMLName          xml.Name          `xml:"OAI-PMH"`
	Xmlns            string            `xml:"xmlns,attr"`
	ResponseDate     string            `xml:"responseDate"`
	Request          requestElem       `xml:"request"`
	Error            *errorElem        `xml:"error,omitempty"`
	Identify         *identifyElem     `xml:"Identify,omitempty"`
	ListMetadataForm *listFormatsElem  `xml:"ListMetadataFormats,omitempty"`
	ListSets         *listSetsElem     `xml:"ListSets,omitempty"`
	GetRecord        *getRecordElem    `xml:"GetRecord,omitempty"`
	ListIdentifiers  *listHeadersElem  `xml:"ListIdentifiers,omitempty"`
	ListRecords      *listRecordsElem  `xml:"ListRecords,omitempty"`
}

type requestElem struct {
	Verb  string     `xml:"verb,attr,omitempty"`
	Args  []xml.Attr `xml:",any,attr"`
	Value string     `xml:",chardata"`
}

type errorElem struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

type identifyElem struct {
	RepositoryName    string   `xml:"repositoryName"`
	BaseURL           string   `xml:"baseURL"`
	ProtocolVersion   string   `xml:"protocolVersion"`
	AdminEmails       []string `xml:"adminEmail"`
	EarliestDatestamp string   `xml:"earliestDatestamp"`
	DeletedRecord     string   `xml:"deletedRecord"`
	Granularity       string   `xml:"granularity"`
	Descriptions      []rawXML `xml:"description"`
}

type rawXML struct {
	Inner string `xml:",innerxml"`
}

type listFormatsElem struct {
	Formats []formatElem `xml:"metadataFormat"`
}

type formatElem struct {
	Prefix    string `xml:"metadataPrefix"`
	Schema    string `xml:"schema"`
	Namespace string `xml:"metadataNamespace"`
}

type listSetsElem struct {
	Sets            []setElem `xml:"set"`
	ResumptionToken *string   `xml:"resumptionToken,omitempty"`
}

type setElem struct {
	Spec string `xml:"setSpec"`
	Name string `xml:"setName"`
}

type headerElem struct {
	Identifier string   `xml:"identifier"`
	Datestamp  string   `xml:"datestamp"`
	SetSpecs   []string `xml:"setSpec,omitempty"`
	Status     string   `xml:"status,attr,omitempty"`
}

type recordElem struct {
	Header   headerElem `xml:"header"`
	Metadata *rawXML    `xml:"metadata,omitempty"`
}

type getRecordElem struct {
	Record recordElem `xml:"record"`
}

type listHeadersElem struct {
	Headers         []headerElem `xml:"header"`
	ResumptionToken *string      `xml:"resumptionToken,omitempty"`
}

type listRecordsElem struct {
	Records         []recordElem `xml:"record"`
	ResumptionToken *string      `xml:"resumptionToken,omitempty"`
}

// renderResponse builds the XML envelope for a successful Dispatch
// result.
func renderResponse(baseURL string, resp *engine.Response) envelope {
	env := envelope{
		Xmlns:        oaiPMHNamespace,
		ResponseDate: datecodec.Format(resp.ResponseTime),
		Request:      requestFromResponse(baseURL, resp),
	}

	switch {
	case resp.Identify != nil:
		env.Identify = identifyFromResult(baseURL, resp.Identify)
	case resp.MetadataFormats != nil:
		env.ListMetadataForm = &listFormatsElem{Formats: formatsFromResult(resp.MetadataFormats)}
	case resp.Sets != nil:
		env.ListSets = &listSetsElem{Sets: setsFromResult(resp.Sets), ResumptionToken: resp.ResumptionToken}
	case resp.Record != nil:
		env.GetRecord = &getRecordElem{Record: recordFromResult(*resp.Record)}
	case resp.Headers != nil:
		env.ListIdentifiers = &listHeadersElem{Headers: headersFromResult(resp.Headers), ResumptionToken: resp.ResumptionToken}
	case resp.Records != nil:
		env.ListRecords = &listRecordsElem{Records: recordsFromResult(resp.Records), ResumptionToken: resp.ResumptionToken}
	}
	return env
}

// renderError builds the XML envelope for a failed Dispatch result.
// responseTime/verb/args still come from the engine's error response
// (spec §6: the request is echoed verbatim, including the server's
// base URL, even on error).
func renderError(responseTime time.Time, baseURL string, verb string, args map[string]string, err oaierrors.Error) envelope {
	return envelope{
		Xmlns:        oaiPMHNamespace,
		ResponseDate: datecodec.Format(responseTime),
		Request:      requestElemFromArgs(baseURL, verb, args),
		Error:        &errorElem{Code: err.Code(), Message: err.Error()},
	}
}

func requestFromResponse(baseURL string, resp *engine.Response) requestElem {
	return requestElemFromArgs(baseURL, resp.RequestVerb, resp.RequestArgs)
}

// requestElemFromArgs echoes every request parameter as an attribute
// on <request>, per spec §6, except "verb" itself which is always
// rendered through the dedicated verb attribute.
func requestElemFromArgs(baseURL string, verb string, args map[string]string) requestElem {
	return requestElem{Verb: verb, Args: filterVerbArg(args), Value: baseURL}
}

func filterVerbArg(args map[string]string) []xml.Attr {
	names := make([]string, 0, len(args))
	for k := range args {
		if k != "verb" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	out := make([]xml.Attr, 0, len(names))
	for _, k := range names {
		out = append(out, xml.Attr{Name: xml.Name{Local: k}, Value: args[k]})
	}
	return out
}

func identifyFromResult(baseURL string, id *engine.IdentifyResult) *identifyElem {
	descriptions := make([]rawXML, 0, len(id.RepositoryDescriptions))
	for _, d := range id.RepositoryDescriptions {
		descriptions = append(descriptions, rawXML{Inner: d})
	}
	return &identifyElem{
		RepositoryName:    id.RepositoryName,
		BaseURL:           baseURL,
		ProtocolVersion:   id.ProtocolVersion,
		AdminEmails:       id.AdminEmails,
		EarliestDatestamp: datecodec.Format(id.EarliestDatestamp),
		DeletedRecord:     id.DeletedRecordPolicy,
		Granularity:       "YYYY-MM-DDThh:mm:ssZ",
		Descriptions:      descriptions,
	}
}

func formatsFromResult(formats []engine.MetadataFormat) []formatElem {
	out := make([]formatElem, 0, len(formats))
	for _, f := range formats {
		out = append(out, formatElem{Prefix: f.Prefix, Schema: f.Schema, Namespace: f.Namespace})
	}
	return out
}

func setsFromResult(sets []engine.SetResult) []setElem {
	out := make([]setElem, 0, len(sets))
	for _, s := range sets {
		out = append(out, setElem{Spec: s.Spec, Name: s.Name})
	}
	return out
}

func headerFromResult(h engine.HeaderResult) headerElem {
	elem := headerElem{
		Identifier: h.Identifier,
		Datestamp:  datecodec.Format(h.Datestamp),
		SetSpecs:   h.SetSpecs,
	}
	if h.Deleted {
		elem.Status = "deleted"
	}
	return elem
}

func headersFromResult(headers []engine.HeaderResult) []headerElem {
	out := make([]headerElem, 0, len(headers))
	for _, h := range headers {
		out = append(out, headerFromResult(h))
	}
	return out
}

func recordFromResult(r engine.RecordResult) recordElem {
	elem := recordElem{Header: headerFromResult(r.Header)}
	if !r.Header.Deleted && r.XML != "" {
		elem.Metadata = &rawXML{Inner: r.XML}
	}
	return elem
}

func recordsFromResult(records []engine.RecordResult) []recordElem {
	out := make([]recordElem, 0, len(records))
	for _, r := range records {
		out = append(out, recordFromResult(r))
	}
	return out
}
