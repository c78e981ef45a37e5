package web

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/tatianab/ripple-realms/internal/models"
	"github.com/tatianab/ripple-realms/internal/quests"
	"github.com/tatianab/ripple-realms/internal/zones"
)

func (s *Server) chronicle(w http.ResponseWriter, r *http.Request) {
	userID, name, ok := session(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	realm, err := s.svc.Engine.Realm(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="chronicle.pdf"`)
	if err := writeChronicle(w, s.svc.Catalog, name, realm); err != nil {
		s.log.Error("writing chronicle", "realm", realm.ID, "err", err)
	}
}

// writeChronicle renders a one-page summary of the realm's journey.
func writeChronicle(w io.Writer, catalog *quests.Catalog, name string, realm models.Realm) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Ripple Realms chronicle", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	title := "The Chronicle of a " + string(realm.RealmType) + " Realm"
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	if name != "" {
		pdf.SetFont("Helvetica", "I", 12)
		pdf.CellFormat(0, 8, tr("as lived by "+name), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	section := func(heading string) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 9, tr(heading), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	section("Journey")
	var reached []string
	for _, st := range zones.Map(realm.Zone()) {
		if st.Reached {
			reached = append(reached, zones.Title(st.Name))
		}
	}
	pdf.MultiCell(0, 6, tr(strings.Join(reached, " > ")), "", "L", false)
	pdf.Ln(3)

	section("Traits")
	pdf.MultiCell(0, 6, tr(strings.Join(realm.TraitList(), ", ")), "", "L", false)
	pdf.Ln(3)

	section("Companions")
	if len(realm.Companions()) == 0 {
		pdf.MultiCell(0, 6, "None yet.", "", "L", false)
	}
	for _, c := range realm.Companions() {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s, a %s", c.Name, c.Type)), "", "L", false)
	}
	pdf.Ln(3)

	section("Quests completed")
	titles := questTitles(catalog)
	if len(realm.CompletedQuests()) == 0 {
		pdf.MultiCell(0, 6, "None yet.", "", "L", false)
	}
	for i, id := range realm.CompletedQuests() {
		t, ok := titles[id]
		if !ok {
			t = id
		}
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, t)), "", "L", false)
	}

	return pdf.Output(w)
}

func questTitles(catalog *quests.Catalog) map[string]string {
	out := map[string]string{}
	for _, z := range catalog.Zones() {
		for _, q := range catalog.QuestsFor(z) {
			out[q.ID] = q.Title
		}
	}
	return out
}
