// Package extract maps one raw ingestion record into canonical contact and
// company drafts. Field aliases are data: each field owns an ordered list of
// accessors and the first present value wins.
package extract

import (
	"strings"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// DefaultJobTitle is used when a record carries no title at all.
const DefaultJobTitle = "Professional"

var (
	firstNameFields = concat(
		keys("first_name", "firstName", "firstname", "FirstName"),
		[]accessor{nameToken("name", 0)},
		keys("given_name", "givenName", "fname"),
	)
	lastNameFields = concat(
		keys("last_name", "lastName", "lastname", "LastName"),
		[]accessor{nameToken("name", -1)},
		keys("family_name", "familyName", "surname", "lname"),
	)
	emailFields = keys("email", "Email", "email_address", "emailAddress", "work_email", "business_email")
	// secondaryEmailFields are tried only when none of emailFields is present.
	secondaryEmailFields = concat(
		keys("contact_email", "primary_email", "personal_email", "mail", "e_mail", "e-mail"),
		[]accessor{first("emails"), first("email_addresses"), first("personal_emails")},
	)
	jobTitleFields    = keys("title", "job_title", "jobTitle", "position", "headline", "role")
	seniorityFields   = keys("seniority", "seniority_level", "seniorityLevel", "level")
	linkedInFields    = keys("linkedin_url", "linkedinUrl", "linkedin", "linkedin_profile", "li_url")
	mobilePhoneFields = concat(
		keys("mobile_phone", "mobilePhone", "mobile", "sanitized_phone", "phone_number", "phoneNumber", "phone", "direct_phone"),
		[]accessor{first("phone_numbers", "sanitized_number"), first("phone_numbers", "raw_number")},
	)
	countryFields = keys("country", "Country", "country_name")
	stateFields   = keys("state", "State", "region", "province")
	cityFields    = keys("city", "City", "locality", "town")

	companyNameFields = concat(
		org("name", "company_name", "organization_name"),
		keys("company_name", "companyName", "organization_name", "organizationName", "company", "employer"),
	)
	companyDomainFields = concat(
		org("primary_domain", "domain", "company_domain"),
		keys("company_domain", "companyDomain", "organization_domain", "domain"),
	)
	companyWebsiteFields = concat(
		org("website_url", "website", "url", "homepage"),
		keys("company_website", "companyWebsite", "organization_website_url", "website", "website_url", "company_url"),
	)
	companyLinkedInFields = concat(
		org("linkedin_url", "linkedin"),
		keys("company_linkedin_url", "companyLinkedinUrl", "organization_linkedin_url"),
	)
	companyIndustryFields = concat(
		org("industry", "industries"),
		keys("industry", "company_industry", "companyIndustry"),
	)
	companySizeFields = concat(
		org("estimated_num_employees", "employee_count", "employees", "size", "num_employees"),
		keys("company_size", "companySize", "employees", "employee_count", "num_employees", "estimated_num_employees"),
	)
	companyPhoneFields = concat(
		org("phone", "sanitized_phone"),
		[]accessor{path("organization", "primary_phone", "number"), path("company", "primary_phone", "number")},
		keys("company_phone", "companyPhone", "organization_phone"),
	)
	companyTechFields = concat(
		org("technology_names", "technologies", "current_technologies", "tech_stack"),
		keys("company_technologies", "companyTechnologies", "technologies", "technology_names"),
	)
	companyCountryFields = concat(org("country"), keys("company_country", "organization_country"))
	companyStateFields   = concat(org("state"), keys("company_state", "organization_state"))
	companyCityFields    = concat(org("city"), keys("company_city", "organization_city"))
)

// Contact builds a ContactDraft from r.
func Contact(r model.RawRecord) model.ContactDraft {
	c := model.ContactDraft{
		FirstName:   firstString(r, firstNameFields),
		LastName:    firstString(r, lastNameFields),
		Email:       firstString(r, emailFields),
		JobTitle:    firstString(r, jobTitleFields),
		Seniority:   firstString(r, seniorityFields),
		LinkedInURL: firstString(r, linkedInFields),
		MobilePhone: firstMapped(r, mobilePhoneFields, normalize.NormalizePhone),
		Country:     normalize.NormalizeLocation(firstString(r, countryFields), normalize.LocationCountry),
		State:       normalize.NormalizeLocation(firstString(r, stateFields), normalize.LocationState),
		City:        normalize.NormalizeLocation(firstString(r, cityFields), normalize.LocationCity),
	}

	if c.FirstName == "" {
		if words := strings.Fields(normalize.SanitizeString(r["full_name"])); len(words) > 0 {
			c.FirstName = words[0]
			if c.LastName == "" && len(words) > 1 {
				c.LastName = strings.Join(words[1:], " ")
			}
		}
	}
	if c.Email == "" {
		c.Email = firstString(r, secondaryEmailFields)
	}
	c.Email = normalize.NormalizeEmail(c.Email)
	if c.JobTitle == "" {
		c.JobTitle = DefaultJobTitle
	}
	return c
}

// Company builds a CompanyDraft from r, preferring the nested organization
// object over top-level keys.
func Company(r model.RawRecord) model.CompanyDraft {
	d := model.CompanyDraft{
		Name:                normalize.NormalizeCompanyName(firstString(r, companyNameFields)),
		Website:             normalize.WebsiteURL(firstString(r, companyWebsiteFields)),
		LinkedInURL:         firstString(r, companyLinkedInFields),
		ScrapedIndustry:     firstString(r, companyIndustryFields),
		CompanyPhone:        firstMapped(r, companyPhoneFields, normalize.NormalizePhone),
		CompanyTechnologies: normalize.ParseCompanyTechnologies(firstPresent(r, companyTechFields)),
		Country:             normalize.NormalizeLocation(firstString(r, companyCountryFields), normalize.LocationCountry),
		State:               normalize.NormalizeLocation(firstString(r, companyStateFields), normalize.LocationState),
		City:                normalize.NormalizeLocation(firstString(r, companyCityFields), normalize.LocationCity),
	}

	d.Domain = firstMapped(r, companyDomainFields, normalize.NormalizeDomain)
	if d.Domain == "" {
		d.Domain = normalize.NormalizeDomain(d.Website)
	}
	if d.Website == "" {
		d.Website = normalize.WebsiteFromDomain(d.Domain)
	}

	if size, ok := normalize.ParseCount(firstPresent(r, companySizeFields)); ok && size > 0 {
		d.CompanySize = &size
	}
	return d
}

// Record extracts both drafts from r.
func Record(r model.RawRecord) (model.ContactDraft, model.CompanyDraft) {
	return Contact(r), Company(r)
}
