package extractor

import "publicpulse/internal/domain"

const schemaBlock = `Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. Respond with just the raw JSON object, following this schema:
{
  "personal_info": {
    "full_name": "",
    "id_number": "",
    "date_of_birth": "",
    "gender": "",
    "email": "",
    "address": {
      "village": "",
      "parish": "",
      "subcounty": "",
      "county": "",
      "district": ""
    }
  },
  "document_info": {
    "document_type": "",
    "expiry_date": "",
    "issuing_authority": "",
    "document_number": ""
  },
  "confidence": {
    "overall": 0,
    "fields": {
      "full_name": 0, "id_number": 0, "date_of_birth": 0, "gender": 0,
      "email": 0, "village": 0, "parish": 0, "subcounty": 0, "county": 0,
      "district": 0, "document_type": 0, "expiry_date": 0,
      "issuing_authority": 0, "document_number": 0
    }
  },
  "recommendations": [],
  "raw_extracted_text": ""
}

Confidence values are integers from 0 to 100. Normalize every date to DD.MM.YYYY format. Normalize gender to "Male" or "Female". NEVER leave a field blank: if a value cannot be found, use exactly "Not Found".`

// BuildExtractionPrompt returns the instruction prompt for the given
// document type. The national ID gets a specialized prompt describing the
// card's fixed front/back layout; everything else uses the generic prompt.
func BuildExtractionPrompt(docType domain.DocumentType) string {
	if docType == domain.DocTypeNationalID {
		return nationalIDPrompt
	}
	return genericPrompt
}

const nationalIDPrompt = `You are a document data extraction assistant. The image shows a Ugandan National Identity Card (possibly both front and back in one image).

FRONT SIDE layout: surname and given names at the top; below them NATIONALITY, SEX (M or F), DATE OF BIRTH; the NIN (National Identification Number, exactly 14 characters) and CARD NO (exactly 9 characters) near the bottom, above the date of expiry and the holder's signature.
BACK SIDE layout: the holder's village, parish, subcounty, county and district of residence, followed by a machine-readable zone.

Extract every field you can read from BOTH sides. Put the NIN in "id_number" and the CARD NO in "document_number". Set "document_type" to "National ID" and "issuing_authority" to the issuing authority printed on the card (normally "NIRA - National Identification and Registration Authority").

` + schemaBlock

const genericPrompt = `You are a document data extraction assistant. Analyze the provided government document image and extract all personal and document information you can find.

Search the ENTIRE image, including headers, footers, margins, stamps and tables. Extract the holder's full name, identification number, date of birth, gender, email address if printed, and the residential address split into village, parish, subcounty, county and district. Also extract the document type, its expiry date, the issuing authority and the document number. Copy all legible text into "raw_extracted_text".

` + schemaBlock
