// Package labelmap maps drug label indications to ICD-10 codes.
//
// A Service owns the catalog store, the label cache, the DailyMed client,
// the section extractor and the match engine. Open the service, load the
// catalog once with LoadCatalog, then call Start to fit the vector space:
//
//	svc, err := labelmap.Open(labelmap.NewConfig(labelmap.WithDBPath("./data")))
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	if err := svc.Start(ctx); err != nil {
//		return err
//	}
//	label, err := svc.MapDrug(ctx, "aspirin")
package labelmap
